package explorer

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/facet-dev/facet/reflection"
)

type exploreBase struct {
	ID string
}

type exploreWidget struct {
	exploreBase
	Width int32
	Label string `facet:"Text"`
	Tags  []string
}

func (w *exploreWidget) Grow(by int32) int32 {
	w.Width += by
	return w.Width
}

type exploreShape interface {
	Grow(by int32) int32
}

type exploreLevel int32

func registerExploreFixtures() {
	reflection.Register[exploreBase]("Base").Register()
	reflection.Register[exploreWidget]("Widget").
		Aliases("OldWidget").
		Attrs(reflection.Description{Text: "A positioned control."}).
		PropAttrs("Width", reflection.Description{Text: "Extent in pixels."}, reflection.NotRequired{}).
		Method("Grow").
		Register()
	reflection.RegisterEnum[exploreLevel]("Level").
		Value("Low", 0, reflection.Description{Text: "Quiet."}).
		Value("High", 1).
		Alias("Verbose", "High").
		Register()
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandler_ListTypes(t *testing.T) {
	defer reflection.Reset()
	registerExploreFixtures()

	h := Handler()
	rec := get(t, h, "/types")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var got typeList
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int32(reflection.TypeCount()), got.Count)
	assert.Len(t, got.Types, int(got.Count))
	assert.True(t, sort.SliceIsSorted(got.Types, func(i, j int) bool {
		return got.Types[i].Name < got.Types[j].Name
	}))

	rows := make(map[string]typeSummary, len(got.Types))
	for _, row := range got.Types {
		rows[row.Name] = row
	}

	widget, ok := rows["Widget"]
	require.True(t, ok)
	assert.Equal(t, "object", widget.Shape)
	assert.Equal(t, int32(4), widget.Properties)
	assert.Equal(t, int32(1), widget.Methods)
	assert.Equal(t, "A positioned control.", widget.Description)

	assert.Equal(t, "enum", rows["Level"].Shape)
	assert.Equal(t, "scalar", rows["UUID"].Shape)

	// The descriptor types serve their own listing.
	assert.Contains(t, rows, "Explorer.TypeList")
	assert.Contains(t, rows, "Explorer.Type")
}

func TestHandler_DescribeType(t *testing.T) {
	defer reflection.Reset()
	registerExploreFixtures()

	wt, ok := reflection.GetType("Widget")
	require.True(t, ok)

	h := Handler()
	rec := get(t, h, "/types/Widget")
	require.Equal(t, http.StatusOK, rec.Code)

	var got typeDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))

	assert.Equal(t, "Widget", got.Name)
	assert.Equal(t, []string{"OldWidget"}, got.Aliases)
	assert.Equal(t, "object", got.Shape)
	assert.Equal(t, "A positioned control.", got.Description)
	assert.Equal(t, int32(wt.RegistryIndex()), got.RegistryIndex)
	assert.True(t, got.CanNew)
	assert.Equal(t, []string{"Base"}, got.Parents)
	assert.Contains(t, got.Attributes, attributeDescriptor{ID: "Description", Detail: "Text:A positioned control."})

	names := make([]string, len(got.Properties))
	for i, p := range got.Properties {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"Width", "Text", "Tags", "ID"}, names)

	width := got.Properties[0]
	assert.Equal(t, "int32", width.Type)
	assert.False(t, width.Static)
	assert.True(t, width.CanRead)
	assert.True(t, width.CanWrite)
	assert.Contains(t, width.Attributes, attributeDescriptor{ID: "Description", Detail: "Text:Extent in pixels."})
	assert.Contains(t, width.Attributes, attributeDescriptor{ID: "NotRequired", Detail: ""})

	assert.Equal(t, "[]string", got.Properties[2].Type)

	require.Len(t, got.Methods, 1)
	grow := got.Methods[0]
	assert.Equal(t, "Grow", grow.Name)
	assert.False(t, grow.Static)
	assert.Equal(t, []string{"int32"}, grow.Params)
	assert.Equal(t, "int32", grow.Returns)

	assert.Empty(t, got.EnumValues)
}

func TestHandler_DescribeType_Alias(t *testing.T) {
	defer reflection.Reset()
	registerExploreFixtures()

	h := Handler()
	rec := get(t, h, "/types/OldWidget")
	require.Equal(t, http.StatusOK, rec.Code)

	var got typeDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Widget", got.Name)
}

func TestHandler_DescribeType_NotFound(t *testing.T) {
	defer reflection.Reset()

	h := Handler()
	rec := get(t, h, "/types/Nope")
	require.Equal(t, http.StatusNotFound, rec.Code)

	var got errorDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Contains(t, got.Error, `"Nope"`)
}

func TestHandler_DescribeEnum(t *testing.T) {
	defer reflection.Reset()
	registerExploreFixtures()

	h := Handler()
	rec := get(t, h, "/types/Level")
	require.Equal(t, http.StatusOK, rec.Code)

	var got typeDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "enum", got.Shape)

	// Aliases resolve on lookup but are not values.
	want := []enumValueDescriptor{
		{Name: "Low", Value: 0, Description: "Quiet."},
		{Name: "High", Value: 1},
	}
	assert.Equal(t, want, got.EnumValues)
}

func TestHandler_Stats(t *testing.T) {
	defer reflection.Reset()
	registerExploreFixtures()
	reflection.RegisterInterface[exploreShape]("Shape")

	h := Handler()
	rec := get(t, h, "/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var got statsDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int32(reflection.TypeCount()), got.Types)
	assert.Equal(t, int32(1), got.Enums)
	assert.Equal(t, int32(1), got.Scalars)
	assert.Equal(t, int32(1), got.Interfaces)
	assert.GreaterOrEqual(t, got.Objects, int32(2))
	assert.Greater(t, got.Properties, int32(0))
}

func TestHandler_DescribesItself(t *testing.T) {
	defer reflection.Reset()

	h := Handler()
	rec := get(t, h, "/types/Explorer.Type")
	require.Equal(t, http.StatusOK, rec.Code)

	var got typeDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Explorer.Type", got.Name)
	assert.Equal(t, "object", got.Shape)

	byName := make(map[string]propertyDescriptor, len(got.Properties))
	for _, p := range got.Properties {
		byName[p.Name] = p
	}
	assert.Equal(t, "string", byName["Name"].Type)
	assert.Equal(t, "[]explorer.propertyDescriptor", byName["Properties"].Type)
}

func TestRegisterRoutes_Mounted(t *testing.T) {
	defer reflection.Reset()
	registerExploreFixtures()

	root := chi.NewRouter()
	root.Mount("/debug/registry", Handler(WithLogger(zaptest.NewLogger(t))))

	rec := get(t, root, "/debug/registry/types/Widget")
	require.Equal(t, http.StatusOK, rec.Code)

	var got typeDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Widget", got.Name)
}
