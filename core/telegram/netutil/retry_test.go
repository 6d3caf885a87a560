package netutil

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassification(t *testing.T) {
	dial := &url.Error{Op: "Post", URL: "https://api.telegram.org", Err: &net.OpError{Op: "dial", Err: errors.New("refused")}}
	read := &url.Error{Op: "Post", URL: "https://api.telegram.org", Err: &net.OpError{Op: "read", Err: timeoutErr{}}}
	dns := fmt.Errorf("wrapped: %w", &net.DNSError{Err: "no such host", Name: "api.telegram.org"})

	assert.True(t, NotSent(dial))
	assert.True(t, ShouldRetry(dial))
	assert.True(t, NotSent(dns))

	assert.False(t, NotSent(read))
	assert.True(t, ShouldRetry(read))

	assert.False(t, ShouldRetry(errors.New("Bad Request (400)")))
	assert.False(t, ShouldRetry(nil))
	assert.False(t, NotSent(nil))
}
