package telegram

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/pqbot/core/telegram/commands"
)

func noop(tele.Context) error { return nil }

func testRegistry() *Registry {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "Welcome"})
	reg.RegisterCommand("/cancel", commands.Command{Handler: noop, Description: "Stop", Aliases: []string{"/exit"}})
	reg.RegisterCommand("/debug", commands.Command{Handler: noop, Description: "Internal", Hidden: true})
	return reg
}

func TestRegisterCommandSkipsInvalid(t *testing.T) {
	reg := testRegistry()
	reg.RegisterCommand("help", commands.Command{Handler: noop, Description: "x"})
	reg.RegisterCommand("/help", commands.Command{Description: "x"})
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "again"})

	assert.Equal(t, []string{"/cancel", "/debug", "/start"}, reg.Commands())
	_, cmd, _ := reg.LookupCommand("/start")
	assert.Equal(t, "Welcome", cmd.Description)
}

func TestListCommandsKeepsOrderAndHidesHidden(t *testing.T) {
	reg := testRegistry()
	assert.Equal(t, []tele.Command{
		{Text: "start", Description: "Welcome"},
		{Text: "cancel", Description: "Stop"},
	}, reg.ListCommands(true))
	assert.Len(t, reg.ListCommands(false), 3)
}

func TestLookupCommandResolvesAliases(t *testing.T) {
	reg := testRegistry()
	name, _, ok := reg.LookupCommand("exit")
	require.True(t, ok)
	assert.Equal(t, "/cancel", name)

	_, _, ok = reg.LookupCommand("/nope")
	assert.False(t, ok)
}

func TestEndpointsIncludeAliases(t *testing.T) {
	eps := testRegistry().Endpoints()
	assert.Contains(t, eps, "/exit")
	assert.Contains(t, eps, "/cancel")
	assert.Len(t, eps, 4)
}

type fakeSetter struct {
	got []interface{}
	err error
}

func (f *fakeSetter) SetCommands(opts ...interface{}) error {
	f.got = opts
	return f.err
}

func TestInitBotCommands(t *testing.T) {
	s := &fakeSetter{}
	require.NoError(t, InitBotCommands(s, testRegistry()))
	require.Len(t, s.got, 1)
	assert.Len(t, s.got[0], 2)

	s.err = errors.New("unauthorized")
	assert.Error(t, InitBotCommands(s, testRegistry()))
}
