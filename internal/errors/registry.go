package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://github.com/vango-dev/gaugekit/blob/main/docs/errors.md#"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid gaugekit.json",
		Detail:   "The gaugekit.json configuration file is malformed.",
		DocURL:   docBase + "e120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration value is not set.",
		DocURL:   docBase + "e121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid port number",
		Detail:   "The configured port number is invalid.",
		DocURL:   docBase + "e122",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is not one of the accepted options.",
		DocURL:   docBase + "e123",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Project already initialized",
		Detail:   "The target directory already contains gaugekit.json.",
		DocURL:   docBase + "e140",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Not a gaugekit project",
		Detail:   "The current directory has no gaugekit.json. Run this command from a directory with gaugekit.json or pass --config.",
		DocURL:   docBase + "e141",
	},
	"E142": {
		Category: CategoryCLI,
		Message:  "Fixture check failed",
		Detail:   "One or more fixtures did not resolve their references as expected.",
		DocURL:   docBase + "e142",
	},
	"E143": {
		Category: CategoryCLI,
		Message:  "Unknown project template",
		Detail:   "The requested project template does not exist.",
		DocURL:   docBase + "e143",
	},

	// ============================================
	// Fixture Errors (E160-E179)
	// ============================================

	"E160": {
		Category: CategoryFixture,
		Message:  "Invalid fixture file",
		Detail:   "The fixture could not be parsed into a VNode tree.",
		DocURL:   docBase + "e160",
	},
	"E161": {
		Category: CategoryFixture,
		Message:  "Fixture expectation failed",
		Detail:   "A reference handle did not resolve to the expected element.",
		DocURL:   docBase + "e161",
	},
	"E162": {
		Category: CategoryFixture,
		Message:  "Fixture not found",
		Detail:   "No fixture with this name is loaded.",
		DocURL:   docBase + "e162",
	},

	// ============================================
	// Snapshot Errors (E180-E199)
	// ============================================

	"E180": {
		Category: CategorySnapshot,
		Message:  "Snapshot store failure",
		Detail:   "Reading or writing a snapshot failed.",
		DocURL:   docBase + "e180",
	},
	"E181": {
		Category: CategorySnapshot,
		Message:  "Snapshot mismatch",
		Detail:   "The mounted HTML differs from the stored snapshot.",
		DocURL:   docBase + "e181",
	},

	// ============================================
	// Build Errors (E200-E219)
	// ============================================

	"E200": {
		Category: CategoryBuild,
		Message:  "Render returned no node",
		Detail:   "A component's Render method returned nil. Render must return exactly one VNode.",
		DocURL:   docBase + "e200",
	},
	"E201": {
		Category: CategoryBuild,
		Message:  "Component factory failed",
		Detail:   "The component factory returned an error or panicked while instantiating the component.",
		DocURL:   docBase + "e201",
	},
	"E202": {
		Category: CategoryBuild,
		Message:  "Component render panicked",
		Detail:   "A component's OnBeforeRender or Render method panicked.",
		DocURL:   docBase + "e202",
	},
	"E203": {
		Category: CategoryBuild,
		Message:  "Invalid VNode",
		Detail:   "The VNode has no tag, no factory, or an unknown kind.",
		DocURL:   docBase + "e203",
	},

	// ============================================
	// Mount Errors (E220-E239)
	// ============================================

	"E220": {
		Category: CategoryMount,
		Message:  "Adoption failed",
		Detail:   "The node could not be adopted by the target document. A clone was used instead.",
		DocURL:   docBase + "e220",
	},
	"E221": {
		Category: CategoryMount,
		Message:  "No appendable node",
		Detail:   "Neither adoption, import, nor node-by-node recreation produced a node owned by the target document.",
		DocURL:   docBase + "e221",
	},
	"E222": {
		Category: CategoryMount,
		Message:  "Nothing to mount",
		Detail:   "The tree has no mounted node. Build the tree before mounting it.",
		DocURL:   docBase + "e222",
	},

	// ============================================
	// DOM Errors (E240-E259)
	// ============================================

	"E240": {
		Category: CategoryDOM,
		Message:  "Hierarchy request error",
		Detail:   "The node cannot be inserted at this point of the tree.",
		DocURL:   docBase + "e240",
	},
	"E241": {
		Category: CategoryDOM,
		Message:  "Wrong document",
		Detail:   "The node belongs to a different document than the parent.",
		DocURL:   docBase + "e241",
	},
	"E242": {
		Category: CategoryDOM,
		Message:  "Invalid character",
		Detail:   "The name contains characters that are not allowed.",
		DocURL:   docBase + "e242",
	},
	"E243": {
		Category: CategoryDOM,
		Message:  "Operation not supported",
		Detail:   "The host document does not support this operation.",
		DocURL:   docBase + "e243",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
