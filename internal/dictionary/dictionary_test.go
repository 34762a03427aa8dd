package dictionary

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContentRegistry(t *testing.T) *Registry {
	t.Helper()
	reg := NewRegistry()
	require.NoError(t, reg.RegisterNamespace("cm", ContentNamespace))
	require.NoError(t, reg.RegisterProperty(PropertyDefinition{
		Name:      NewQName(ContentNamespace, "name"),
		DataType:  DataTypeText,
		Tokenised: TokeniseBoth,
	}))
	require.NoError(t, reg.RegisterProperty(PropertyDefinition{
		Name:     NewQName(ContentNamespace, "content"),
		DataType: DataTypeContent,
	}))
	return reg
}

func TestParseQName(t *testing.T) {
	tests := []struct {
		input   string
		want    QName
		wantErr bool
	}{
		{input: "{http://x/1.0}name", want: NewQName("http://x/1.0", "name")},
		{input: "{}local", want: NewQName("", "local")},
		{input: "name", wantErr: true},
		{input: "{http://x/1.0", wantErr: true},
		{input: "{http://x/1.0}", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseQName(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidQName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestResolveQName(t *testing.T) {
	reg := newContentRegistry(t)

	got, err := ResolveQName("cm:name", reg)
	require.NoError(t, err)
	assert.Equal(t, NewQName(ContentNamespace, "name"), got)

	got, err = ResolveQName("{"+ContentNamespace+"}title", reg)
	require.NoError(t, err)
	assert.Equal(t, NewQName(ContentNamespace, "title"), got)

	_, err = ResolveQName("zz:name", reg)
	assert.ErrorIs(t, err, ErrUnknownPrefix)

	_, err = ResolveQName("name", reg)
	assert.ErrorIs(t, err, ErrInvalidQName)
}

func TestQNamePrefixString(t *testing.T) {
	reg := newContentRegistry(t)
	assert.Equal(t, "cm:name", NewQName(ContentNamespace, "name").PrefixString(reg))
	assert.Equal(t, "d:text", DataTypeText.PrefixString(reg))
	assert.Equal(t, "{urn:none}x", NewQName("urn:none", "x").PrefixString(reg))
	assert.Equal(t, "{urn:none}x", NewQName("urn:none", "x").PrefixString(nil))
}

func TestParseTokenisation(t *testing.T) {
	tests := []struct {
		input string
		want  Tokenisation
	}{
		{"", TokeniseTrue},
		{"true", TokeniseTrue},
		{"FALSE", TokeniseFalse},
		{" Both ", TokeniseBoth},
	}
	for _, tt := range tests {
		got, err := ParseTokenisation(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	_, err := ParseTokenisation("sometimes")
	assert.Error(t, err)
}

func TestRegistryLookups(t *testing.T) {
	reg := newContentRegistry(t)

	def, ok := reg.Property(NewQName(ContentNamespace, "name"))
	require.True(t, ok)
	assert.Equal(t, DataTypeText, def.DataType)
	assert.Equal(t, TokeniseBoth, def.Tokenised)
	assert.False(t, def.IsContent())

	def, ok = reg.Property(NewQName(ContentNamespace, "content"))
	require.True(t, ok)
	assert.True(t, def.IsContent())

	_, ok = reg.Property(NewQName(ContentNamespace, "missing"))
	assert.False(t, ok)

	dt, ok := reg.DataType(DataTypeDatetime)
	require.True(t, ok)
	assert.Equal(t, DataTypeDatetime, dt.Name)

	uri, err := reg.NamespaceURI("d")
	require.NoError(t, err)
	assert.Equal(t, DictionaryNamespace, uri)
}

func TestRegistryReturnsCopies(t *testing.T) {
	reg := newContentRegistry(t)
	def, _ := reg.Property(NewQName(ContentNamespace, "name"))
	def.DataType = DataTypeContent

	again, _ := reg.Property(NewQName(ContentNamespace, "name"))
	assert.Equal(t, DataTypeText, again.DataType)
}

func TestRegistryValidation(t *testing.T) {
	reg := newContentRegistry(t)

	assert.Error(t, reg.RegisterNamespace("", "urn:x"))
	assert.Error(t, reg.RegisterNamespace("a:b", "urn:x"))
	assert.Error(t, reg.RegisterNamespace("x", ""))
	assert.Error(t, reg.RegisterNamespace("cm", "urn:other"))
	assert.NoError(t, reg.RegisterNamespace("cm", ContentNamespace))

	assert.Error(t, reg.RegisterProperty(PropertyDefinition{Name: NewQName("", "x"), DataType: DataTypeText}))
	assert.Error(t, reg.RegisterProperty(PropertyDefinition{Name: NewQName("urn:x", "x")}))
	assert.Error(t, reg.RegisterProperty(PropertyDefinition{Name: NewQName("urn:x", "x"), DataType: NewQName("urn:x", "nope")}))
	assert.Error(t, reg.RegisterDataType(DataTypeDefinition{Name: NewQName("urn:x", "")}))
}

func TestRegistryPrefixesSorted(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterNamespace("zz", "urn:a"))
	require.NoError(t, reg.RegisterNamespace("aa", "urn:a"))
	assert.Equal(t, []string{"aa", "zz"}, reg.Prefixes("urn:a"))
	assert.Empty(t, reg.Prefixes("urn:none"))
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := newContentRegistry(t)
	name := NewQName(ContentNamespace, "name")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = reg.Property(name)
				_, _ = reg.NamespaceURI("cm")
			}
		}()
		go func(i int) {
			defer wg.Done()
			_ = reg.RegisterProperty(PropertyDefinition{
				Name:     NewQName(ContentNamespace, "p"+strings.Repeat("x", i)),
				DataType: DataTypeInt,
			})
		}(i)
	}
	wg.Wait()
	assert.Len(t, reg.Properties(), 10)
}
