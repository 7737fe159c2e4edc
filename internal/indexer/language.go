package indexer

import "strings"

// languageByExtension maps a lowercase file extension (no dot) to a language tag.
var languageByExtension = map[string]string{
	"rs":         "rust",
	"js":         "javascript",
	"jsx":        "javascript",
	"ts":         "typescript",
	"tsx":        "typescript",
	"py":         "python",
	"java":       "java",
	"go":         "go",
	"cpp":        "cpp",
	"cc":         "cpp",
	"cxx":        "cpp",
	"c":          "c",
	"h":          "c",
	"hpp":        "c",
	"php":        "php",
	"rb":         "ruby",
	"cs":         "csharp",
	"swift":      "swift",
	"kt":         "kotlin",
	"scala":      "scala",
	"clj":        "clojure",
	"cljs":       "clojure",
	"hs":         "haskell",
	"ml":         "ocaml",
	"mli":        "ocaml",
	"elm":        "elm",
	"ex":         "elixir",
	"exs":        "elixir",
	"erl":        "erlang",
	"hrl":        "erlang",
	"dart":       "dart",
	"lua":        "lua",
	"r":          "r",
	"m":          "objective-c",
	"mm":         "objective-cpp",
	"pl":         "perl",
	"pm":         "perl",
	"sh":         "bash",
	"bash":       "bash",
	"ps1":        "powershell",
	"sql":        "sql",
	"html":       "html",
	"htm":        "html",
	"css":        "css",
	"scss":       "scss",
	"sass":       "scss",
	"xml":        "xml",
	"json":       "json",
	"yaml":       "yaml",
	"yml":        "yaml",
	"toml":       "toml",
	"md":         "markdown",
	"tex":        "latex",
	"dockerfile": "dockerfile",
	"makefile":   "makefile",
	"cmake":      "cmake",
}

// DetectLanguage returns the language tag for an extension, or "" when the
// extension is unknown. The lookup is case-insensitive and tolerates a
// leading dot.
func DetectLanguage(ext string) string {
	return languageByExtension[strings.ToLower(strings.TrimPrefix(ext, "."))]
}
