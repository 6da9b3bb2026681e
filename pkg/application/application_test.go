package application

import (
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubController struct {
	key string
}

func (c *stubController) Key() string            { return c.key }
func (c *stubController) Register(_ *mux.Router) {}

func TestRegisterControllers_PreservesOrder(t *testing.T) {
	app := New(&ApplicationOptions{})

	app.RegisterControllers(
		&stubController{key: "templates"},
		&stubController{key: "sessions"},
	)
	app.RegisterControllers(&stubController{key: "leads"})

	keys := make([]string, 0, 3)
	for _, c := range app.Controllers() {
		keys = append(keys, c.Key())
	}
	assert.Equal(t, []string{"templates", "sessions", "leads"}, keys)
}

func TestRegisterControllers_ReplaceKeepsPosition(t *testing.T) {
	app := New(&ApplicationOptions{})
	app.RegisterControllers(
		&stubController{key: "templates"},
		&stubController{key: "sessions"},
	)

	replacement := &stubController{key: "templates"}
	app.RegisterControllers(replacement)

	controllers := app.Controllers()
	require.Len(t, controllers, 2)
	assert.Same(t, replacement, controllers[0].(*stubController))
	assert.Equal(t, "sessions", controllers[1].Key())
}
