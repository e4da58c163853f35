package executor

import "zia/internal/models"

// LanguageSpec describes how each backend runs a language
type LanguageSpec struct {
	Language models.Language
	Compiler string // wandbox compiler id
	Image    string // docker image
	FileName string
	Compile  []string
	Run      []string
}

// runs the first compiled class that declares a main method
const javaLaunch = `cd out && for c in *.class; do n="${c%.class}"; if javap "$n" | grep -q 'static void main(java.lang.String\[\])'; then exec java "$n"; fi; done; echo "no class with a main method" >&2; exit 1`

var languageSpecs = map[models.Language]LanguageSpec{
	models.LangCPP: {
		Language: models.LangCPP,
		Compiler: "gcc-13.2.0",
		Image:    "gcc:13",
		FileName: "main.cpp",
		Compile:  []string{"g++", "-O2", "-std=c++17", "main.cpp", "-o", "main"},
		Run:      []string{"./main"},
	},
	models.LangJava: {
		Language: models.LangJava,
		Compiler: "openjdk-jdk-21+35",
		Image:    "eclipse-temurin:21-jdk",
		FileName: "Main.java",
		Compile:  []string{"javac", "-d", "out", "Main.java"},
		Run:      []string{"/bin/sh", "-c", javaLaunch},
	},
	models.LangPython: {
		Language: models.LangPython,
		Compiler: "cpython-3.13.8",
		Image:    "python:3.13-slim",
		FileName: "main.py",
		Run:      []string{"python3", "main.py"},
	},
}

// SpecFor returns the run recipe for lang
func SpecFor(lang models.Language) (LanguageSpec, error) {
	spec, ok := languageSpecs[lang]
	if !ok {
		return LanguageSpec{}, ErrUnsupportedLanguage
	}
	return spec, nil
}

// Commands lists the compile step (if any) followed by the run step
func (s LanguageSpec) Commands() [][]string {
	if len(s.Compile) == 0 {
		return [][]string{s.Run}
	}
	return [][]string{s.Compile, s.Run}
}
