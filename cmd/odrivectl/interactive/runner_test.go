package interactive

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/odrive-host/odrive-go/internal/mock"
	"github.com/odrive-host/odrive-go/pkg/inspect"
	"github.com/odrive-host/odrive-go/pkg/odrive"
	"github.com/odrive-host/odrive-go/pkg/schema"
	"github.com/odrive-host/odrive-go/pkg/wire"
)

func newRunner(t *testing.T) (*Runner, *sim.Device) {
	t.Helper()
	dev := sim.NewDemo()
	session := odrive.NewSession(dev)
	t.Cleanup(func() { _ = session.Close() })

	_, err := session.LoadSchema(context.Background())
	require.NoError(t, err)
	return NewRunner(session, nil), dev
}

func run(t *testing.T, r *Runner, line string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	parts := strings.Fields(line)
	err := r.Execute(context.Background(), &buf, parts[0], parts[1:])
	return buf.String(), err
}

func TestRunnerRead(t *testing.T) {
	r, _ := newRunner(t)

	out, err := run(t, r, "read vbus_voltage hw_version_major")
	require.NoError(t, err)
	assert.Equal(t, "vbus_voltage = 24.1\nhw_version_major = 3\n", out)

	out, err = run(t, r, "r serial_number")
	require.NoError(t, err)
	assert.Equal(t, "serial_number = 35687815337811 (0x2075378E5753)\n", out)
}

func TestRunnerWrite(t *testing.T) {
	r, dev := newRunner(t)

	out, err := run(t, r, "write axis0.controller.input_vel 1.5")
	require.NoError(t, err)
	assert.Equal(t, "axis0.controller.input_vel <- 1.5\n", out)
	assert.Equal(t, wire.EncodeScalar(float32(1.5)), dev.Value(sim.DemoInputVel))

	_, err = run(t, r, "write axis0.requested_state 0x8")
	require.NoError(t, err)
	assert.Equal(t, wire.EncodeScalar(int32(8)), dev.Value(sim.DemoRequestedState))

	out, err = run(t, r, "read axis0.requested_state")
	require.NoError(t, err)
	assert.Equal(t, "axis0.requested_state = 8\n", out)
}

func TestRunnerWriteErrors(t *testing.T) {
	r, _ := newRunner(t)

	_, err := run(t, r, "write vbus_voltage 12")
	assert.True(t, errors.Is(err, odrive.ErrReadOnly))

	_, err = run(t, r, "write axis0.requested_state fast")
	assert.True(t, errors.Is(err, inspect.ErrInvalidValue))

	_, err = run(t, r, "write axis0.nope 1")
	assert.True(t, errors.Is(err, schema.ErrNotFound))

	_, err = run(t, r, "write axis0.requested_state")
	assert.True(t, errors.Is(err, ErrUsage))
}

func TestRunnerCall(t *testing.T) {
	r, dev := newRunner(t)

	out, err := run(t, r, "call save_configuration")
	require.NoError(t, err)
	assert.Equal(t, "save_configuration() called\n", out)
	assert.Equal(t, 1, dev.Calls(sim.DemoSaveConfig))

	_, err = run(t, r, "call vbus_voltage")
	assert.True(t, errors.Is(err, schema.ErrTypeMismatch))
}

func TestRunnerTree(t *testing.T) {
	r, _ := newRunner(t)

	out, err := run(t, r, "tree axis0.controller.config.")
	require.NoError(t, err)
	assert.Equal(t, "config\n  vel_limit: float (read-write)\n  control_mode: int32 (read-write)\n", out)

	out, err = run(t, r, "tree")
	require.NoError(t, err)
	assert.Contains(t, out, "save_configuration() -> result bool\n")
	assert.Contains(t, out, "    set_linear_count(count int32)\n")
}

func TestRunnerInfo(t *testing.T) {
	r, _ := newRunner(t)

	out, err := run(t, r, "info axis0.encoder.pos_estimate")
	require.NoError(t, err)
	assert.Equal(t, "axis0.encoder.pos_estimate [12] (float32, read-only)\n", out)
}

func TestRunnerReloadAndStats(t *testing.T) {
	r, _ := newRunner(t)

	out, err := run(t, r, "reload")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Schema reloaded ("), out)

	out, err = run(t, r, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Exchanges:")
	assert.Contains(t, out, "Failures:     0")
}

func TestRunnerCustomReload(t *testing.T) {
	dev := sim.NewDemo()
	session := odrive.NewSession(dev)
	defer session.Close()

	calls := 0
	r := NewRunner(session, func(ctx context.Context) error {
		calls++
		root, err := schema.Parse(sim.DemoSchema)
		if err != nil {
			return err
		}
		session.UseSchema(root)
		return nil
	})

	_, err := run(t, r, "reload")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, uint64(0), session.Stats().Exchanges)
}

func TestRunnerExport(t *testing.T) {
	r, _ := newRunner(t)

	out, err := run(t, r, "export")
	require.NoError(t, err)
	assert.Contains(t, out, "name: vbus_voltage")
}

func TestRunnerNoSchema(t *testing.T) {
	session := odrive.NewSession(sim.NewDemo())
	defer session.Close()
	r := NewRunner(session, nil)

	for _, line := range []string{"tree", "export", "read vbus_voltage"} {
		_, err := run(t, r, line)
		assert.True(t, errors.Is(err, odrive.ErrNoSchema), line)
	}
}

func TestRunnerUnknownCommand(t *testing.T) {
	r, _ := newRunner(t)

	_, err := run(t, r, "frobnicate")
	assert.True(t, errors.Is(err, ErrUnknownCommand))
}

func TestCompleter(t *testing.T) {
	root, err := schema.Parse(sim.DemoSchema)
	require.NoError(t, err)
	c := &completer{schema: func() *schema.Root { return root }}

	complete := func(line string) ([]string, int) {
		out, n := c.Do([]rune(line), len([]rune(line)))
		var got []string
		for _, r := range out {
			got = append(got, string(r))
		}
		return got, n
	}

	got, n := complete("re")
	assert.Equal(t, []string{"ad ", "load "}, got)
	assert.Equal(t, 2, n)

	got, n = complete("read axis0.con")
	assert.Equal(t, []string{"troller."}, got)
	assert.Equal(t, len("axis0.con"), n)

	got, _ = complete("write axis0.controller.input_")
	assert.Equal(t, []string{"pos", "vel"}, got)

	got, _ = complete("read zz")
	assert.Empty(t, got)
}
