package lang

import "github.com/smacker/go-tree-sitter/cpp"

func init() {
	Languages["cpp"] = &Language{
		Name: "cpp",
		Extensions: []string{
			".cpp", ".cc", ".cxx", ".c++", ".ipp",
			".hpp", ".hh", ".hxx", ".h++", ".h",
		},
		Headers: []string{".hpp", ".hh", ".hxx", ".h++", ".h"},
		lang:    cpp.GetLanguage(),
	}
}
