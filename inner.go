package foto2pdf

import (
	"github.com/olafgeibig/foto2pdf/core"
	"github.com/olafgeibig/foto2pdf/pipeline"
)

// Registry exposes the codec registry so alternative backends can be wired in
// after construction (e.g. vips.RegisterBackend).
func (p *Processor) Registry() core.Registry { return p.reg }

// Orchestrator exposes the single-image pipeline for advanced use.
func (p *Processor) Orchestrator() *pipeline.Orchestrator { return p.orch }
