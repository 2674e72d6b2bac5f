package internal

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestBuildSymbolTable(t *testing.T) {
	program := parseSource(t, `namespace A
  namespace B
    var x
    func f() begin skip end
  end
  const c := 1
end
namespace A
  var y
end
var g
func main() begin skip end`)
	table := BuildSymbolTable(program)

	assert.Len(t, table.NamespaceSymbolTable, 1)
	assert.True(t, table.isFuncExist("main"))
	assert.True(t, table.isNameExist("g"))
	assert.False(t, table.isNameExist("x"))

	a := table.lookUpNamespace([]string{"A"})
	assert.NotNil(t, a)
	tp, ok := a.lookUpBinding("c")
	assert.True(t, ok)
	assert.Equal(t, ConstSymbolType, tp)
	tp, ok = a.lookUpBinding("y")
	assert.True(t, ok)
	assert.Equal(t, VarSymbolType, tp)

	b := table.lookUpNamespace([]string{"A", "B"})
	assert.NotNil(t, b)
	assert.True(t, b.isNameExist("x"))
	assert.True(t, b.isFuncExist("f"))
	assert.False(t, b.isFuncExist("x"))

	assert.Nil(t, table.lookUpNamespace([]string{"B"}))
	assert.Nil(t, table.lookUpNamespace([]string{"A", "C"}))
	assert.Equal(t, table, table.lookUpNamespace([]string{}))
}

func TestBuildSymbolTable_LastWriteWins(t *testing.T) {
	testData := []struct {
		content  string
		path     []string
		name     string
		expected SymbolType
	}{
		{content: "const x := 1 var x", name: "x", expected: VarSymbolType},
		{content: "const x := 1, x := 2", name: "x", expected: ConstSymbolType},
		{content: "namespace A var x end namespace A const x := 3 end", path: []string{"A"}, name: "x",
			expected: ConstSymbolType},
	}
	for _, data := range testData {
		table := BuildSymbolTable(parseSource(t, data.content))
		scope := table.lookUpNamespace(data.path)
		assert.NotNil(t, scope, data.content)
		tp, ok := scope.lookUpBinding(data.name)
		assert.True(t, ok, data.content)
		assert.Equal(t, data.expected, tp, data.content)
	}
}

func TestSymbolType_String(t *testing.T) {
	assert.Equal(t, "const", ConstSymbolType.String())
	assert.Equal(t, "var", VarSymbolType.String())
}
