package composite

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"emojigen/internal/adapter"
	"emojigen/internal/cache"
	"emojigen/internal/persist"
	"emojigen/internal/schema"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

// stubSource is a Source resolving to a fixed value or error.
type stubSource struct {
	name  string
	value any
	err   error
}

func (s stubSource) Type() string { return s.name }

func (s stubSource) Resolve(context.Context, *adapter.Runtime, adapter.VersionContext) (any, error) {
	return s.value, s.err
}

func nonEmptyString() schema.Schema[string] {
	return schema.Func[string](func(v string) schema.Result[string] {
		if v == "" {
			return schema.Fail[string](schema.Issue{Message: "must not be empty"})
		}
		return schema.OK(v)
	})
}

func runtimeFor(t *testing.T) *adapter.Runtime {
	t.Helper()
	return &adapter.Runtime{Cache: cache.New(t.TempDir())}
}

func TestRun_MergesSourcesAndAdapters(t *testing.T) {
	h, err := New("merged", Config[string]{
		Schema: nonEmptyString(),
		Sources: map[string]SourceFunc{
			"literal": Literal("lit"),
			"computed": func(_ context.Context, _ *adapter.Runtime, vc adapter.VersionContext) (any, error) {
				return "v" + vc.EmojiVersion, nil
			},
		},
		Adapters: []Source{stubSource{name: "metadata", value: "meta"}},
		Output: func(_ adapter.VersionContext, v any) (string, error) {
			r := v.(Record)
			return fmt.Sprintf("%v|%v|%v", r["literal"], r["computed"], r["metadata"]), nil
		},
	})
	require.NoError(t, err)

	got, err := h.Run(context.Background(), runtimeFor(t), adapter.VersionContext{EmojiVersion: "15.0"})
	require.NoError(t, err)
	assert.Equal(t, "lit|v15.0|meta", got)
	assert.Equal(t, []string{"computed", "literal", "metadata"}, h.SourceNames())
}

func TestRun_TransformsAreSequential(t *testing.T) {
	var seen []any
	h, err := New("chain", Config[string]{
		Schema:  nonEmptyString(),
		Sources: map[string]SourceFunc{"n": Literal(1)},
		Transforms: []Transform{
			func(_ adapter.VersionContext, v any) (any, error) {
				seen = append(seen, v)
				n, err := Get[int](v.(Record), "n")
				return n + 1, err
			},
			func(_ adapter.VersionContext, v any) (any, error) {
				seen = append(seen, v)
				return v.(int) * 10, nil
			},
		},
		Output: func(_ adapter.VersionContext, v any) (string, error) {
			return fmt.Sprint(v), nil
		},
	})
	require.NoError(t, err)

	got, err := h.Run(context.Background(), runtimeFor(t), adapter.VersionContext{EmojiVersion: "15.0"})
	require.NoError(t, err)
	assert.Equal(t, "20", got)
	if diff := cmp.Diff([]any{Record{"n": 1}, 2}, seen); diff != "" {
		t.Errorf("transform inputs mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_AdapterKeysWin(t *testing.T) {
	// New rejects this configuration; build the handler directly to exercise the merge order.
	h := &Handler[string]{name: "clash", cfg: Config[string]{
		Schema:   nonEmptyString(),
		Sources:  map[string]SourceFunc{"metadata": Literal("from-source")},
		Adapters: []Source{stubSource{name: "metadata", value: "from-adapter"}},
		Output: func(_ adapter.VersionContext, v any) (string, error) {
			return Get[string](v.(Record), "metadata")
		},
	}}

	got, err := h.Run(context.Background(), runtimeFor(t), adapter.VersionContext{EmojiVersion: "15.0"})
	require.NoError(t, err)
	assert.Equal(t, "from-adapter", got)
}

func TestRun_SourceFailureFailsRun(t *testing.T) {
	boom := errors.New("boom")
	h, err := New("failing", Config[string]{
		Schema:   nonEmptyString(),
		Sources:  map[string]SourceFunc{"ok": Literal("x")},
		Adapters: []Source{stubSource{name: "broken", err: boom}},
		Output:   func(adapter.VersionContext, any) (string, error) { return "never", nil },
	})
	require.NoError(t, err)

	_, err = h.Run(context.Background(), runtimeFor(t), adapter.VersionContext{EmojiVersion: "15.0"})
	assert.ErrorIs(t, err, boom)
}

func TestRun_OutputIsValidated(t *testing.T) {
	h, err := New("invalid", Config[string]{
		Schema: nonEmptyString(),
		Output: func(adapter.VersionContext, any) (string, error) { return "", nil },
	})
	require.NoError(t, err)

	_, err = h.Run(context.Background(), runtimeFor(t), adapter.VersionContext{EmojiVersion: "15.0"})
	var verr *adapter.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "invalid", verr.Adapter)
}

func TestRun_WithRealAdapter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "a\nb\nc\n")
	}))
	defer srv.Close()

	lines, err := adapter.New[[]string]("lines").
		Add(adapter.When(adapter.Always(), adapter.Transformer[string, []string, []string]{
			URLs: func(adapter.VersionContext) []adapter.URLSpec {
				return []adapter.URLSpec{adapter.URL(srv.URL + "/lines.txt")}
			},
			Parser: adapter.CustomParser(func(_ adapter.VersionContext, raw string) (string, error) { return raw, nil }),
			Transform: func(_ adapter.VersionContext, raw string) ([]string, error) {
				return strings.Fields(raw), nil
			},
			Output: func(_ adapter.VersionContext, v []string) ([]string, error) { return v, nil },
		})).
		Schema(schema.Any[[]string]()).
		Build()
	require.NoError(t, err)

	joined := &persist.Schema{Name: "joined", Pattern: "joined.txt", FilePath: "<base-path>/joined.txt", Type: persist.KindRaw}
	h, err := New("joined", Config[string]{
		Schema:   nonEmptyString(),
		Adapters: []Source{lines},
		Output: func(_ adapter.VersionContext, v any) (string, error) {
			l, err := Get[[]string](v.(Record), "lines")
			return strings.Join(l, ","), err
		},
		Persistence: persist.Plan[string]{
			Schemas: []*persist.Schema{joined},
			Map: func(v string) ([]persist.Operation, error) {
				return []persist.Operation{{Reference: joined, Data: v}}, nil
			},
		},
	})
	require.NoError(t, err)

	out := t.TempDir()
	report, err := h.Generate(context.Background(), runtimeFor(t), adapter.VersionContext{EmojiVersion: "15.0"}, persist.Options{OutputDir: out})
	require.NoError(t, err)
	require.Len(t, report.Written, 1)

	data, err := os.ReadFile(filepath.Join(out, "v15.0", "joined.txt"))
	require.NoError(t, err)
	assert.Equal(t, "a,b,c", string(data))
}

func TestNew_Errors(t *testing.T) {
	output := func(adapter.VersionContext, any) (string, error) { return "x", nil }

	tests := []struct {
		name    string
		handler string
		cfg     Config[string]
		want    error
	}{
		{"missing name", "", Config[string]{Schema: nonEmptyString(), Output: output}, ErrMissingName},
		{"missing output", "x", Config[string]{Schema: nonEmptyString()}, ErrMissingOutput},
		{"missing schema", "x", Config[string]{Output: output}, ErrMissingSchema},
		{
			"source collides with adapter",
			"x",
			Config[string]{
				Schema:   nonEmptyString(),
				Output:   output,
				Sources:  map[string]SourceFunc{"metadata": Literal(1)},
				Adapters: []Source{stubSource{name: "metadata"}},
			},
			ErrSourceCollision,
		},
		{
			"duplicate adapter",
			"x",
			Config[string]{
				Schema:   nonEmptyString(),
				Output:   output,
				Adapters: []Source{stubSource{name: "a"}, stubSource{name: "a"}},
			},
			ErrSourceCollision,
		},
		{"nil source", "x", Config[string]{Schema: nonEmptyString(), Output: output, Sources: map[string]SourceFunc{"s": nil}}, ErrNilSource},
		{
			"bad persistence",
			"x",
			Config[string]{Schema: nonEmptyString(), Output: output, Persistence: persist.Plan[string]{Schemas: []*persist.Schema{{Name: "a"}}}},
			persist.ErrInvalidPlan,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.handler, tt.cfg)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGet(t *testing.T) {
	r := Record{"n": 1}

	n, err := Get[int](r, "n")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = Get[string](r, "n")
	assert.Error(t, err)

	_, err = Get[int](r, "missing")
	assert.Error(t, err)
}
