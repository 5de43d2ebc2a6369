package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// Registered codes used outside this package.
const (
	CodeHookOutsideRender = "E001"
	CodeHookCountChanged  = "E002"
	CodeHookTypeChanged   = "E003"
	CodeNoHostAncestor    = "E004"
	CodeUnknownComponent  = "E005"
	CodeNoRenderRoot      = "E006"
	CodeRenderPanic       = "E007"

	CodeFrameTruncated       = "E060"
	CodeUnknownFrame         = "E061"
	CodeBadPayload           = "E062"
	CodeUnknownNode          = "E063"
	CodeSessionWrite         = "E064"
	CodeConfigParse          = "E120"
	CodeConfigInvalid        = "E122"
	CodeConfigNotFound       = "E141"
	CodeUnknownComponentName = "E142"
)

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E001-E039)
	// ============================================

	"E001": {
		Category: CategoryRuntime,
		Message:  "Hook called outside component render",
		Detail:   "Hooks such as UseState may only be called while a component function is being invoked by the reconciler.",
		DocURL:   "https://didact.dev/docs/errors/E001",
	},
	"E002": {
		Category: CategoryRuntime,
		Message:  "Hook count changed between renders",
		Detail:   "A component must call the same hooks, in the same order, on every render. Hook state is matched by call position.",
		DocURL:   "https://didact.dev/docs/errors/E002",
	},
	"E003": {
		Category: CategoryRuntime,
		Message:  "Hook state type changed between renders",
		Detail:   "The hook at this position held a value of a different type on the previous render. Hooks were probably called in a different order.",
		DocURL:   "https://didact.dev/docs/errors/E003",
	},
	"E004": {
		Category: CategoryRuntime,
		Message:  "No host ancestor during commit",
		Detail:   "A fiber being placed or removed has no ancestor that owns a host node. The fiber tree is malformed.",
		DocURL:   "https://didact.dev/docs/errors/E004",
	},
	"E005": {
		Category: CategoryRuntime,
		Message:  "Unknown component implementation",
		Detail:   "The element's component type was not created with fiber.Define.",
		DocURL:   "https://didact.dev/docs/errors/E005",
	},
	"E006": {
		Category: CategoryRuntime,
		Message:  "State update before any render",
		Detail:   "A state update was scheduled but the reconciler has never been given a root to render.",
		DocURL:   "https://didact.dev/docs/errors/E006",
	},
	"E007": {
		Category: CategoryRuntime,
		Message:  "Render pass panicked",
		Detail:   "A component or host operation panicked during a render pass. The pass was abandoned and the session cannot continue.",
		DocURL:   "https://didact.dev/docs/errors/E007",
	},

	// ============================================
	// Protocol Errors (E060-E079)
	// ============================================

	"E060": {
		Category: CategoryProtocol,
		Message:  "Frame truncated",
		Detail:   "The frame header declared more payload bytes than were received.",
		DocURL:   "https://didact.dev/docs/errors/E060",
	},
	"E061": {
		Category: CategoryProtocol,
		Message:  "Unexpected frame type",
		Detail:   "The peer sent a frame type that is not valid in this direction.",
		DocURL:   "https://didact.dev/docs/errors/E061",
	},
	"E062": {
		Category: CategoryProtocol,
		Message:  "Invalid payload",
		Detail:   "The frame payload could not be decoded.",
		DocURL:   "https://didact.dev/docs/errors/E062",
	},
	"E063": {
		Category: CategoryProtocol,
		Message:  "Event targets unknown node",
		Detail:   "The event referenced a node ID that does not exist in this session's host tree.",
		DocURL:   "https://didact.dev/docs/errors/E063",
	},
	"E064": {
		Category: CategoryProtocol,
		Message:  "Session write failed",
		Detail:   "Writing a frame to the WebSocket connection failed. The session will be closed.",
		DocURL:   "https://didact.dev/docs/errors/E064",
	},

	// ============================================
	// Config Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid didact.json",
		Detail:   "The configuration file could not be read or parsed.",
		DocURL:   "https://didact.dev/docs/errors/E120",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range or malformed.",
		DocURL:   "https://didact.dev/docs/errors/E122",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E141": {
		Category: CategoryCLI,
		Message:  "Configuration file not found",
		Detail:   "No didact.json was found at the given location.",
		DocURL:   "https://didact.dev/docs/errors/E141",
	},
	"E142": {
		Category: CategoryCLI,
		Message:  "Unknown demo application",
		Detail:   "The requested demo application is not registered.",
		DocURL:   "https://didact.dev/docs/errors/E142",
	},
}

// Register adds or replaces an error template.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}

// Lookup returns the template for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
