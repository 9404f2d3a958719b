package netutil

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateDomainName(t *testing.T) {
	assert.NoError(t, ValidateDomainName("api.mainnet-beta.solana.com"))
	assert.NoError(t, ValidateDomainName("localhost"))

	assert.Error(t, ValidateDomainName(""))
	assert.Error(t, ValidateDomainName(strings.Repeat("a", maxDomainNameSize+1)))
	assert.Error(t, ValidateDomainName("bad host.com"))
}

func TestValidateHttpUrl(t *testing.T) {
	for _, valid := range []string{
		"https://api.mainnet-beta.solana.com",
		"https://api.devnet.solana.com/",
		"http://localhost:8899",
		"http://127.0.0.1:8899",
	} {
		assert.NoError(t, ValidateHttpUrl(valid, false), valid)
	}

	assert.NoError(t, ValidateHttpUrl("https://api.mainnet-beta.solana.com", true))
	assert.Error(t, ValidateHttpUrl("http://localhost:8899", true))

	for _, invalid := range []string{
		"",
		"invalid",
		"api.mainnet-beta.solana.com",
		"ws://api.mainnet-beta.solana.com",
		"https://",
		"https://bad host.com",
		"://missing",
	} {
		assert.Error(t, ValidateHttpUrl(invalid, false), invalid)
	}
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", GetClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.2")
	assert.Equal(t, "203.0.113.7", GetClientIP(r))

	r.Header.Del("X-Forwarded-For")
	r.RemoteAddr = "not-a-host-port"
	assert.Equal(t, "not-a-host-port", GetClientIP(r))
}
