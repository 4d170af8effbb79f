package stacktrace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalPaths(t *testing.T) {
	stack := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/seedvault/internal/pkg/goroutine.(*Manager).Go.func1.1()
	/src/seedvault/internal/pkg/goroutine/goroutine.go:72 +0x8d
panic({0x1, 0x2})
	/usr/local/go/src/runtime/panic.go:785 +0x132
github.com/shandysiswandi/seedvault/internal/vault/usecase.(*Usecase).Backup(...)
	/src/seedvault/internal/vault/usecase/backup.go:41
`)

	assert.Equal(t, []string{
		"internal/pkg/goroutine/goroutine.go:72",
		"internal/vault/usecase/backup.go:41",
	}, InternalPaths(stack))

	assert.Empty(t, InternalPaths([]byte("no frames here")))
}
