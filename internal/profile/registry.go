package profile

// The registry mirrors the language coverage of the original tool: Python,
// the C-style family (shared by JS/TS and C/C++ headers), Java, Go and
// Rust. Block comment nesting is deliberately encoded per language rather
// than assumed uniform; Rust balances nested /* */ pairs, the C family
// does not.

var registry = map[string]*Profile{
	"python": {
		Language:     "python",
		LineComments: []string{"#"},
		Docstrings: []BlockDelim{
			{Open: `"""`, Close: `"""`},
			{Open: "'''", Close: "'''"},
		},
		Strings: []StringDelim{
			{Quote: `"`, Escape: '\\'},
			{Quote: "'", Escape: '\\'},
		},
	},
	"javascript": {
		Language:     "javascript",
		LineComments: []string{"//"},
		BlockComments: []BlockDelim{
			{Open: "/*", Close: "*/"},
		},
		Strings: []StringDelim{
			{Quote: `"`, Escape: '\\'},
			{Quote: "'", Escape: '\\'},
			{Quote: "`", Escape: '\\', Multiline: true},
		},
	},
	"java": {
		Language:     "java",
		LineComments: []string{"//"},
		Docstrings: []BlockDelim{
			{Open: "/**", Close: "*/"},
		},
		BlockComments: []BlockDelim{
			{Open: "/*", Close: "*/"},
		},
		Strings: []StringDelim{
			{Quote: `"`, Escape: '\\'},
		},
	},
	"go": {
		Language:     "go",
		LineComments: []string{"//"},
		BlockComments: []BlockDelim{
			{Open: "/*", Close: "*/"},
		},
		Strings: []StringDelim{
			{Quote: `"`, Escape: '\\'},
			{Quote: "`", Multiline: true}, // raw string, no escape
		},
	},
	"rust": {
		Language:        "rust",
		LineComments:    []string{"//"},
		DocLineComments: []string{"///", "//!"},
		BlockComments: []BlockDelim{
			{Open: "/*", Close: "*/", Nest: true},
		},
		Strings: []StringDelim{
			{Quote: `"`, Escape: '\\'},
		},
	},
}

var extensions = map[string]string{
	".py":   "python",
	".js":   "javascript",
	".jsx":  "javascript",
	".ts":   "javascript",
	".tsx":  "javascript",
	".java": "java",
	".go":   "go",
	".rs":   "rust",
	".c":    "javascript",
	".cpp":  "javascript",
	".cc":   "javascript",
	".h":    "javascript",
	".hpp":  "javascript",
}
