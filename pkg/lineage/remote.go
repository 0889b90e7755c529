// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package lineage

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// OTelRemoteBackend emits a COMPLETE-equivalent span per lineage event,
// carrying parent-run and documentation facets as span attributes. It
// stands in for the Marquez/OpenLineage collector described in
// base_lineage.py._emit_marquez_event: the wire protocol differs, but the
// obligation is the same — never let the remote sink fail the workflow.
type OTelRemoteBackend struct {
	tracer trace.Tracer
}

func NewOTelRemoteBackend() *OTelRemoteBackend {
	return &OTelRemoteBackend{tracer: otel.Tracer("refactorctl/lineage")}
}

func (b *OTelRemoteBackend) EmitComplete(ev Event) error {
	_, span := b.tracer.Start(context.Background(), "lineage.event",
		trace.WithAttributes(
			attribute.String("event.id", ev.EventID),
			attribute.String("workflow.run_id", ev.Workflow.RunID),
			attribute.String("workflow.parent_id", ev.Workflow.ParentID),
			attribute.Int("workflow.step", ev.Workflow.Step),
			attribute.String("agent.name", ev.Agent.Name),
			attribute.String("agent.type", ev.Agent.Type),
		))
	defer span.End()
	if ev.Error != "" {
		span.SetAttributes(attribute.String("error", ev.Error))
	}
	return nil
}

// NoopRemoteBackend is used when no collector is configured; EmitComplete
// is a deliberate no-op rather than nil, so Tracker's code does not need
// a nil check at every call site.
type NoopRemoteBackend struct{}

func (NoopRemoteBackend) EmitComplete(Event) error {
	slog.Debug("lineage remote backend not configured, skipping emit")
	return nil
}
