package tui

import (
	"errors"
	"fmt"
)

// View is one full-screen mode of the application: the template browser
// or the flow builder.
type View interface {
	Name() string
	// Init runs every time the view becomes current.
	Init() error
	// Cleanup runs when another view takes over. Gesture subscriptions and
	// editor listeners must be released here.
	Cleanup() error

	HandleKey(event KeyEvent) error
	HandleMouse(event MouseEvent) error
	Render(screen Screen) error
}

// ViewManager switches between registered views and remembers where the
// user came from. Only the App event loop calls it.
type ViewManager struct {
	views   map[string]View
	current View
	back    []View
}

func NewViewManager() *ViewManager {
	return &ViewManager{views: make(map[string]View)}
}

// RegisterView makes a view reachable by name.
func (vm *ViewManager) RegisterView(v View) error {
	switch {
	case v == nil:
		return errors.New("cannot register nil view")
	case v.Name() == "":
		return errors.New("view name cannot be empty")
	}
	if _, dup := vm.views[v.Name()]; dup {
		return fmt.Errorf("view %q already registered", v.Name())
	}
	vm.views[v.Name()] = v
	return nil
}

// SwitchTo makes the named view current. Switching to the current view does
// nothing. When the new view fails to start, the old one is restarted and
// stays current.
func (vm *ViewManager) SwitchTo(name string) error {
	next, ok := vm.views[name]
	if !ok {
		return fmt.Errorf("view %q not found", name)
	}
	if next == vm.current {
		return nil
	}

	prev := vm.current
	if prev != nil {
		if err := prev.Cleanup(); err != nil {
			return fmt.Errorf("leaving %s: %w", prev.Name(), err)
		}
	}
	if err := next.Init(); err != nil {
		if prev != nil {
			_ = prev.Init()
		}
		return fmt.Errorf("opening %s: %w", name, err)
	}
	if prev != nil {
		vm.back = append(vm.back, prev)
	}
	vm.current = next
	return nil
}

// GoBack returns to the view that was current before the last switch.
func (vm *ViewManager) GoBack() error {
	if len(vm.back) == 0 {
		return errors.New("no previous view")
	}
	prev := vm.back[len(vm.back)-1]
	vm.back = vm.back[:len(vm.back)-1]

	if vm.current != nil {
		if err := vm.current.Cleanup(); err != nil {
			return fmt.Errorf("leaving %s: %w", vm.current.Name(), err)
		}
	}
	if err := prev.Init(); err != nil {
		return fmt.Errorf("opening %s: %w", prev.Name(), err)
	}
	vm.current = prev
	return nil
}

// GetCurrentView returns the current view, or nil before the first switch
// and after Shutdown.
func (vm *ViewManager) GetCurrentView() View {
	return vm.current
}

// Shutdown cleans up the current view and forgets the history.
func (vm *ViewManager) Shutdown() error {
	var err error
	if vm.current != nil {
		err = vm.current.Cleanup()
	}
	vm.current = nil
	vm.back = nil
	return err
}
