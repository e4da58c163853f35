package executor

import (
	"regexp"
	"strings"

	"zia/internal/models"
)

const cppPrelude = `#include <iostream>
#include <vector>
#include <string>
#include <algorithm>
#include <unordered_map>
#include <unordered_set>
#include <queue>
#include <stack>
#include <map>
#include <set>
using namespace std;

`

const javaPrelude = "import java.util.*;\nimport java.util.stream.*;\n\n"

const pythonPrelude = "from typing import *\n\n"

var (
	javaPublicClass = regexp.MustCompile(`public\s+class`)
	javaLastBrace   = regexp.MustCompile(`}\s*$`)
)

// Prepare adds the boilerplate a bare LeetCode style snippet needs to compile
// and run on its own. Complete programs pass through unchanged apart from the
// Java public class rewrite.
func Prepare(lang models.Language, code string) string {
	switch lang {
	case models.LangCPP:
		if !strings.Contains(code, "#include") {
			code = cppPrelude + code
		}
		if !strings.Contains(code, "main(") && !strings.Contains(code, "main  (") {
			code += "\n\nint main() { return 0; }"
		}
	case models.LangJava:
		// the sandbox file name never matches a public class name
		code = javaPublicClass.ReplaceAllString(code, "class")
		if !strings.Contains(code, "import ") {
			code = javaPrelude + code
		}
		if !strings.Contains(code, "static void main") {
			if strings.Contains(code, "class Solution") {
				code = javaLastBrace.ReplaceAllString(code, "\n    public static void main(String[] args) {}\n}")
			} else {
				code += "\nclass Main { public static void main(String[] args) {} }"
			}
		}
	case models.LangPython:
		if !strings.Contains(code, "import ") && !strings.Contains(code, "from ") {
			code = pythonPrelude + code
		}
	}
	return code
}
