// Package help holds the text shown by `toylang help [topic]`.
package help

import (
	"fmt"
	"sort"
	"strings"
)

// QUICKREF is printed by a bare `toylang help`.
const QUICKREF = `toylang v0.1 - a small tree-walking scripting language

Usage:
  toylang help [topic]   show this text, or one topic in depth
  toylang console         start an interactive REPL
  toylang run <file>      parse and evaluate a .toy file
  toylang format <file>   rewrite a .toy file in canonical form

Topics: syntax, values, builtins, import, errors
Run "toylang help <topic>" for details on one of them.
`

// Topics maps each topic name to its full help text.
var Topics = map[string]string{
	"syntax": `syntax
------
let x = 1;                 variable declaration
let y;                      declared, defaults to nil
x = x + 1;                  assignment; += -= *= /= ^= also exist
fun add(a, b = 1) { return a + b; }
for (i from 0 to 10 step 2) { echo i; }
while (x < 10) { x += 1; }
if (x > 0) { echo "pos"; } else { echo "non-pos"; }
{ let scoped = true; }     a bare block is its own scope
echo "prints a value and a newline";
break; continue; return expr;
import util as u;           loads util.toy, binds its exports object
`,
	"values": `values
------
nil, true/false, numbers (all float64), strings, arrays [1, 2, 3],
objects {a: 1, b: 2}, functions, and builtins.

nil/boolean/number/string are copied on assignment. array/object/
function/builtin are shared handles: assigning one to a second name
gives you two names for the same underlying value.
`,
	"builtins": `builtins
--------
PI, EXP                      constants
exports                      the object an import reads from this file
print, println, input        I/O
size, chars                   array length, string -> array of chars
abs, round, trunc             numeric
all, any                      over an array of booleans
array, bool, number, str, typeof
max, min, sum, slice, reversed, range
read, write                   file I/O
keys, values                  over an object
wait, cls, rand, randint
`,
	"import": `import
------
import name as alias;       reads ./name.toy, evaluates it in a fresh
                              evaluator, and binds its "exports" object
                              under alias (or under name with no alias).
                              Each import statement evaluates the file anew.
`,
	"errors": `errors
------
There is no try/catch. The first runtime error stops the program; it
is printed to stderr with a propagation trace: each statement and
expression dispatch site that re-raises the error adds one
"At <node> at (line, column):" line, innermost failure last.
`,
}

// TopicList is Topics in a stable, documented order.
var TopicList = []string{"syntax", "values", "builtins", "import", "errors"}

// MatchTopic resolves a (possibly abbreviated) topic name, matching an
// exact name first and otherwise the unique topic it prefixes. Names
// that look like they're probing for map-internals handling ("constructor",
// "__proto__") are always rejected rather than matched.
func MatchTopic(query string) (string, string, error) {
	if query == "constructor" || query == "__proto__" {
		return "", "", fmt.Errorf("unknown help topic %q", query)
	}
	if content, ok := Topics[query]; ok {
		return query, content, nil
	}
	var matches []string
	for _, name := range TopicList {
		if strings.HasPrefix(name, query) {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)
	if len(matches) == 1 {
		return matches[0], Topics[matches[0]], nil
	}
	return "", "", fmt.Errorf("unknown help topic %q", query)
}
