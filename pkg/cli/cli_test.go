package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/slotwatch/pkg/cli"
)

func TestValidateCommand(t *testing.T) {
	t.Run("accepts a valid configuration file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		body := `login: marvin
password: paranoid
projects:
  - cpp_module1
disponibility: "09:00-18:00"
send:
  telegram:
    token: t0k3n
    chat_id: "12345"
`
		gt.NoError(t, os.WriteFile(path, []byte(body), 0o600)).Required()

		err := cli.Run(context.Background(), []string{"slotwatch", "validate", "-c", path}, "test")
		gt.NoError(t, err)
	})

	t.Run("rejects a configuration file without projects", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yml")
		gt.NoError(t, os.WriteFile(path, []byte("login: a\npassword: b\n"), 0o600)).Required()

		err := cli.Run(context.Background(), []string{"slotwatch", "validate", "-c", path}, "test")
		gt.Error(t, err)
	})

	t.Run("rejects a missing configuration file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nope.yml")
		err := cli.Run(context.Background(), []string{"slotwatch", "validate", "-c", path}, "test")
		gt.Error(t, err)
	})
}
