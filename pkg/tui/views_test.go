package tui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubView struct {
	name     string
	inits    int
	cleanups int
	initErr  error
}

func (s *stubView) Name() string                 { return s.name }
func (s *stubView) Init() error                  { s.inits++; return s.initErr }
func (s *stubView) Cleanup() error               { s.cleanups++; return nil }
func (s *stubView) HandleKey(KeyEvent) error     { return nil }
func (s *stubView) HandleMouse(MouseEvent) error { return nil }
func (s *stubView) Render(Screen) error          { return nil }

func TestViewManager_RegisterView(t *testing.T) {
	vm := NewViewManager()
	require.NoError(t, vm.RegisterView(&stubView{name: "a"}))

	assert.Error(t, vm.RegisterView(nil))
	assert.Error(t, vm.RegisterView(&stubView{}))
	assert.Error(t, vm.RegisterView(&stubView{name: "a"}))
}

func TestViewManager_SwitchAndBack(t *testing.T) {
	vm := NewViewManager()
	a, b := &stubView{name: "a"}, &stubView{name: "b"}
	require.NoError(t, vm.RegisterView(a))
	require.NoError(t, vm.RegisterView(b))

	require.NoError(t, vm.SwitchTo("a"))
	require.NoError(t, vm.SwitchTo("a"))
	assert.Equal(t, 1, a.inits, "switching to the active view is a no-op")

	require.NoError(t, vm.SwitchTo("b"))
	assert.Equal(t, 1, a.cleanups)
	assert.Same(t, b, vm.GetCurrentView())

	require.NoError(t, vm.GoBack())
	assert.Same(t, a, vm.GetCurrentView())
	assert.Equal(t, 2, a.inits)
	assert.Equal(t, 1, b.cleanups)

	assert.Error(t, vm.GoBack())
	assert.Error(t, vm.SwitchTo("missing"))
}

func TestViewManager_FailedInitRestoresPrevious(t *testing.T) {
	vm := NewViewManager()
	a := &stubView{name: "a"}
	bad := &stubView{name: "bad", initErr: errors.New("boom")}
	require.NoError(t, vm.RegisterView(a))
	require.NoError(t, vm.RegisterView(bad))
	require.NoError(t, vm.SwitchTo("a"))

	assert.Error(t, vm.SwitchTo("bad"))
	assert.Same(t, a, vm.GetCurrentView())
	assert.Error(t, vm.GoBack(), "failed switch leaves no history")
}

func TestViewManager_Shutdown(t *testing.T) {
	vm := NewViewManager()
	a := &stubView{name: "a"}
	require.NoError(t, vm.RegisterView(a))
	require.NoError(t, vm.SwitchTo("a"))

	require.NoError(t, vm.Shutdown())
	assert.Nil(t, vm.GetCurrentView())
	assert.Equal(t, 1, a.cleanups)
}
