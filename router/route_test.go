package router

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultTable(t *testing.T, base string) *Table[string] {
	t.Helper()
	tbl, err := Default(base, "Dashboard", "Chat", "Policy")
	require.NoError(t, err)
	return tbl
}

func TestDefault_ResolvesStaticRoutes(t *testing.T) {
	tbl := defaultTable(t, "/")
	cases := map[string]string{
		"/":       "Dashboard",
		"/chat":   "Chat",
		"/policy": "Policy",
	}
	for path, view := range cases {
		r, err := tbl.Resolve(path)
		require.NoError(t, err, path)
		assert.Equal(t, view, r.View, path)
		assert.Equal(t, path, r.Path)
	}
	assert.Equal(t, 3, tbl.Len())
}

func TestDefault_Names(t *testing.T) {
	tbl := defaultTable(t, "")
	r, err := tbl.ByName(NameChat)
	require.NoError(t, err)
	assert.Equal(t, "/chat", r.Path)
	assert.Equal(t, "对话游乐场", r.Name)
	assert.Equal(t, "仪表盘", tbl.Home().Name)
	assert.Equal(t, "Dashboard", tbl.Home().View)
}

func TestResolve_UnmatchedIsNotFound(t *testing.T) {
	tbl := defaultTable(t, "/")
	for _, p := range []string{"/chats", "/policy/1", "/api", "/admin", "", "chat", "//chat"} {
		_, err := tbl.Resolve(p)
		require.Error(t, err, p)
		assert.True(t, IsNotFound(err), p)
		var nav *NavigationError
		require.True(t, errors.As(err, &nav))
		assert.Equal(t, p, nav.Location)
	}
}

func TestResolve_HistorySemantics(t *testing.T) {
	tbl := defaultTable(t, "/")
	for _, p := range []string{"/chat/", "/CHAT", "/chat?model=gpt", "/chat#latest", "/Policy/?tab=1"} {
		r, err := tbl.Resolve(p)
		require.NoError(t, err, p)
		assert.NotEqual(t, "Dashboard", r.View, p)
	}
	r, err := tbl.Resolve("/?from=login")
	require.NoError(t, err)
	assert.Equal(t, "Dashboard", r.View)
}

func TestResolve_WithBase(t *testing.T) {
	tbl := defaultTable(t, "/console/")
	assert.Equal(t, "/console", tbl.Base())

	for loc, view := range map[string]string{
		"/console":         "Dashboard",
		"/console/":        "Dashboard",
		"/console/chat":    "Chat",
		"/Console/policy/": "Policy",
	} {
		r, err := tbl.Resolve(loc)
		require.NoError(t, err, loc)
		assert.Equal(t, view, r.View, loc)
	}
	for _, loc := range []string{"/chat", "/consolechat", "/", "/other/console/chat"} {
		_, err := tbl.Resolve(loc)
		assert.True(t, IsNotFound(err), loc)
	}
}

func TestHrefAndLocation(t *testing.T) {
	root := defaultTable(t, "/")
	href, err := root.Href(NamePolicy)
	require.NoError(t, err)
	assert.Equal(t, "/policy", href)
	assert.Equal(t, "/", root.Location("/"))

	based := defaultTable(t, "/console")
	href, err = based.Href(NameDashboard)
	require.NoError(t, err)
	assert.Equal(t, "/console/", href)
	assert.Equal(t, "/console/chat", based.Location("/chat"))

	_, err = based.Href("missing")
	assert.True(t, IsNotFound(err))
}

func TestNew_RejectsDuplicatePaths(t *testing.T) {
	_, err := New("/",
		Route[int]{Path: "/", Name: "home"},
		Route[int]{Path: "/chat", Name: "a"},
		Route[int]{Path: "/Chat", Name: "b"},
	)
	assert.ErrorIs(t, err, ErrDuplicatePath)

	_, err = New("/",
		Route[int]{Path: "/", Name: "home"},
		Route[int]{Path: "/", Name: "other home"},
	)
	assert.ErrorIs(t, err, ErrDuplicatePath)
}

func TestNew_RejectsDuplicateNames(t *testing.T) {
	_, err := New("/",
		Route[int]{Path: "/", Name: "home"},
		Route[int]{Path: "/chat", Name: "home"},
	)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestNew_RequiresHome(t *testing.T) {
	_, err := New("/", Route[int]{Path: "/chat", Name: "chat"})
	assert.ErrorIs(t, err, ErrNoHome)

	_, err = New[int]("/")
	assert.ErrorIs(t, err, ErrNoHome)
}

func TestNew_RejectsInvalidRoutes(t *testing.T) {
	for _, r := range []Route[int]{
		{Path: "chat", Name: "x"},
		{Path: "/chat/", Name: "x"},
		{Path: "/chat?x", Name: "x"},
		{Path: "/chat#x", Name: "x"},
		{Path: "/chat", Name: " "},
	} {
		_, err := New("/", Route[int]{Path: "/", Name: "home"}, r)
		assert.ErrorIs(t, err, ErrInvalidRoute, r.Path)
	}
	_, err := New("console", Route[int]{Path: "/", Name: "home"})
	assert.ErrorIs(t, err, ErrInvalidRoute)
}

func TestRoutes_PairwiseDistinctAndCopied(t *testing.T) {
	tbl := defaultTable(t, "/")
	routes := tbl.Routes()
	seen := map[string]bool{}
	for _, r := range routes {
		assert.False(t, seen[r.Path], "duplicate %s", r.Path)
		seen[r.Path] = true
	}
	assert.Equal(t, []string{"/", "/chat", "/policy"}, []string{routes[0].Path, routes[1].Path, routes[2].Path})

	routes[0].View = "tampered"
	assert.Equal(t, "Dashboard", tbl.Home().View)
}

func TestResolve_ConcurrentUse(t *testing.T) {
	tbl := defaultTable(t, "/")
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := tbl.Resolve("/chat"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
}
