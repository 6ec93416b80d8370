// package webfinger implements parsing of acct: resource identifiers.
// See https://www.rfc-editor.org/rfc/rfc7033.
package webfinger

import (
	"fmt"
	"net/url"
	"strings"
)

// Acct is a parsed acct:user@host resource.
type Acct struct {
	User string
	Host string
}

func (a *Acct) String() string {
	return "acct:" + a.User + "@" + a.Host
}

// Webfinger returns the URL of the webfinger resource for this Acct.
func (a *Acct) Webfinger() string {
	return "https://" + a.Host + "/.well-known/webfinger?resource=" + url.QueryEscape(a.String())
}

// Parse parses an acct: resource query. Anything not shaped as
// acct:user@host is rejected.
func Parse(resource string) (*Acct, error) {
	// In case the resource has been URL encoded.
	resource, err := url.QueryUnescape(resource)
	if err != nil {
		return nil, err
	}
	rest, ok := strings.CutPrefix(resource, "acct:")
	if !ok {
		return nil, fmt.Errorf("invalid resource: %q", resource)
	}
	// Remove the leading @, if there's one.
	rest = strings.TrimPrefix(rest, "@")
	user, host, ok := strings.Cut(rest, "@")
	if !ok || user == "" || host == "" {
		return nil, fmt.Errorf("invalid acct: %q", resource)
	}
	return &Acct{
		User: user,
		Host: host,
	}, nil
}
