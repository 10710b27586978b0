package object

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mkapi/internal/inspect"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		obj      *inspect.Object
		kind     Kind
		abstract bool
	}{
		{"module", &inspect.Object{Category: inspect.CatModule}, KindModule, false},
		{"package", &inspect.Object{Category: inspect.CatModule, Package: true}, KindPackage, false},
		{"class", &inspect.Object{Category: inspect.CatClass}, KindClass, false},
		{"dataclass", &inspect.Object{Category: inspect.CatClass, Dataclass: true}, KindDataclass, false},
		{"abstract class", &inspect.Object{Category: inspect.CatClass, Abstract: true}, KindClass, true},
		{"function", &inspect.Object{Category: inspect.CatFunction}, KindFunction, false},
		{"method", &inspect.Object{Category: inspect.CatFunction, HasSelf: true}, KindMethod, false},
		{"generator", &inspect.Object{Category: inspect.CatFunction, HasYield: true}, KindGenerator, false},
		{"generator method", &inspect.Object{Category: inspect.CatFunction, HasYield: true, HasSelf: true}, KindGenerator, false},
		{"classmethod", &inspect.Object{Category: inspect.CatFunction, ClassMeth: true}, KindClassMethod, false},
		{"staticmethod decorated", &inspect.Object{Category: inspect.CatFunction, StaticMeth: true}, KindStaticMethod, false},
		{"staticmethod by qualname", &inspect.Object{Category: inspect.CatFunction, Qualname: "C.f"}, KindStaticMethod, false},
		{"readonly property", &inspect.Object{Category: inspect.CatFunction, Property: true}, KindReadonlyProperty, false},
		{"readwrite property", &inspect.Object{Category: inspect.CatFunction, Property: true, Setter: true}, KindReadwriteProperty, false},
		{"abstract method", &inspect.Object{Category: inspect.CatFunction, HasSelf: true, Abstract: true}, KindMethod, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, abstract := Classify(tt.obj)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.abstract, abstract)

			again, _ := Classify(tt.obj)
			assert.Equal(t, kind, again, "classification is idempotent")
		})
	}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "readonly property", KindReadonlyProperty.String())
	assert.Equal(t, "readwrite property", KindReadwriteProperty.String())
	assert.Equal(t, "classmethod", KindClassMethod.String())
	assert.Equal(t, "dataclass", KindDataclass.String())
}

func TestKindMatchesMode(t *testing.T) {
	assert.True(t, KindClass.MatchesMode("class"))
	assert.True(t, KindDataclass.MatchesMode("class"))
	assert.False(t, KindMethod.MatchesMode("class"))

	assert.True(t, KindFunction.MatchesMode("function"))
	assert.True(t, KindGenerator.MatchesMode("function"))
	assert.False(t, KindMethod.MatchesMode("function"))

	assert.True(t, KindMethod.MatchesMode("method"))
	assert.True(t, KindClassMethod.MatchesMode("method"))
	assert.True(t, KindStaticMethod.MatchesMode("method"))
	assert.True(t, KindGenerator.MatchesMode("method"))
	assert.False(t, KindReadonlyProperty.MatchesMode("method"))
}
