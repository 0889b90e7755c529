package task

import (
	"testing"
	"time"

	"github.com/kadirpekel/refactorctl/pkg/agent"
	"github.com/kadirpekel/refactorctl/pkg/configresolver"
	"github.com/kadirpekel/refactorctl/pkg/refoerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedAgent struct {
	name      string
	responses []agent.Response
	calls     int
}

func (a *scriptedAgent) Name() string { return a.name }

func (a *scriptedAgent) Process(ctx *configresolver.Node) agent.Response {
	i := a.calls
	if i >= len(a.responses) {
		i = len(a.responses) - 1
	}
	a.calls++
	return a.responses[i]
}

func TestExecuteRetriesOnlyTransientFailures(t *testing.T) {
	a := &scriptedAgent{
		name: "discovery",
		responses: []agent.Response{
			{Success: false, Error: "rate limited", Err: refoerr.New(refoerr.LLMTransient, "rate limited")},
			{Success: true, Data: map[string]any{"response": "ok"}},
		},
	}

	var slept []time.Duration
	tk := New(Config{
		Agent:             a,
		TaskName:          "discovery-task",
		MaxRetries:        3,
		RetryDelaySeconds: 0.01,
		Sleep:             func(d time.Duration) { slept = append(slept, d) },
	})

	result := tk.Execute(configresolver.NewNode(nil))
	require.True(t, result.Success)
	assert.Equal(t, 2, a.calls)
	assert.Len(t, slept, 1)
}

func TestExecuteDoesNotRetryPermanentFailures(t *testing.T) {
	a := &scriptedAgent{
		name: "discovery",
		responses: []agent.Response{
			{Success: false, Error: "bad request", Err: refoerr.New(refoerr.LLMPermanent, "bad request")},
			{Success: true},
		},
	}

	tk := New(Config{Agent: a, MaxRetries: 3})
	result := tk.Execute(configresolver.NewNode(nil))

	require.False(t, result.Success)
	assert.Equal(t, 1, a.calls)
}

func TestExecuteHonorsApprovalGate(t *testing.T) {
	a := &scriptedAgent{name: "coder", responses: []agent.Response{{Success: true}}}
	tk := New(Config{
		Agent:            a,
		RequiresApproval: true,
		Approve:          func(*configresolver.Node) bool { return false },
	})

	result := tk.Execute(configresolver.NewNode(nil))
	require.False(t, result.Success)
	assert.Equal(t, 0, a.calls)
}

func TestExecuteRespectsMaxRetries(t *testing.T) {
	a := &scriptedAgent{
		name: "discovery",
		responses: []agent.Response{
			{Success: false, Err: refoerr.New(refoerr.LLMTransient, "down")},
		},
	}
	tk := New(Config{Agent: a, MaxRetries: 2, Sleep: func(time.Duration) {}})
	result := tk.Execute(configresolver.NewNode(nil))

	require.False(t, result.Success)
	assert.Equal(t, 3, tk.Attempts()) // initial + 2 retries
}
