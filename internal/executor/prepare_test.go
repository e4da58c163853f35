package executor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"zia/internal/models"
)

func TestPrepareCPP(t *testing.T) {
	out := Prepare(models.LangCPP, "class Solution { public: int f() { return 1; } };")

	assert.True(t, strings.HasPrefix(out, "#include <iostream>"))
	assert.Contains(t, out, "using namespace std;")
	assert.True(t, strings.HasSuffix(out, "int main() { return 0; }"))
}

func TestPrepareCPPCompleteProgramUnchanged(t *testing.T) {
	src := "#include <cstdio>\nint main() { puts(\"hi\"); }"
	assert.Equal(t, src, Prepare(models.LangCPP, src))
}

func TestPrepareJavaSolution(t *testing.T) {
	out := Prepare(models.LangJava, "public class Solution {\n    int f() { return 1; }\n}")

	assert.NotContains(t, out, "public class")
	assert.True(t, strings.HasPrefix(out, "import java.util.*;"))
	assert.Contains(t, out, "public static void main(String[] args) {}\n}")
	assert.NotContains(t, out, "class Main")
}

func TestPrepareJavaWithoutSolution(t *testing.T) {
	out := Prepare(models.LangJava, "class Helper {}")
	assert.True(t, strings.HasSuffix(out, "class Main { public static void main(String[] args) {} }"))
}

func TestPrepareJavaKeepsExistingMain(t *testing.T) {
	src := "import java.io.*;\nclass Main { public static void main(String[] a) {} }"
	assert.Equal(t, src, Prepare(models.LangJava, src))
}

func TestPreparePython(t *testing.T) {
	assert.Equal(t, "from typing import *\n\nprint(1)", Prepare(models.LangPython, "print(1)"))

	src := "import sys\nprint(sys.argv)"
	assert.Equal(t, src, Prepare(models.LangPython, src))
}

func TestSpecForCommands(t *testing.T) {
	spec, err := SpecFor(models.LangPython)
	assert.NoError(t, err)
	assert.Len(t, spec.Commands(), 1)

	spec, err = SpecFor(models.LangCPP)
	assert.NoError(t, err)
	assert.Len(t, spec.Commands(), 2)
	assert.Equal(t, "gcc-13.2.0", spec.Compiler)

	spec, err = SpecFor(models.LangJava)
	assert.NoError(t, err)
	assert.Equal(t, "openjdk-jdk-21+35", spec.Compiler)

	_, err = SpecFor(models.Language("ruby"))
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}
