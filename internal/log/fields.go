package log

// FieldComponent is the record field every logger stamps.
const FieldComponent = "component"

// Component names, one per binary surface.
const (
	ComponentApp    = "app"
	ComponentHTTP   = "http"
	ComponentCLI    = "cli"
	ComponentWorker = "worker"
)
