package search

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/osquery/osquery-go"
	osquerygen "github.com/osquery/osquery-go/gen/osquery"
)

// querier is the subset of the osquery extension client the backend uses.
type querier interface {
	Query(sql string) (*osquerygen.ExtensionResponse, error)
	Close()
}

// OSQuery searches through the file table of a running osquery daemon.
// A connection is opened per search and closed afterwards, so a daemon
// restart between global scans is harmless.
type OSQuery struct {
	socket  string
	timeout time.Duration
	dial    func(socket string, timeout time.Duration) (querier, error)
}

// NewOSQuery returns an osquery backend talking to the extension socket.
func NewOSQuery(socket string, timeout time.Duration) *OSQuery {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OSQuery{
		socket:  socket,
		timeout: timeout,
		dial: func(socket string, timeout time.Duration) (querier, error) {
			return osquery.NewClient(socket, timeout)
		},
	}
}

// Name implements BroadSearch.
func (o *OSQuery) Name() string { return BackendOSQuery }

// Search implements BroadSearch.
func (o *OSQuery) Search(ctx context.Context, name, root string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, facilityError(BackendOSQuery, err)
	}

	client, err := o.dial(o.socket, o.timeout)
	if err != nil {
		return nil, facilityError(BackendOSQuery, fmt.Errorf("connecting to %s: %w", o.socket, err))
	}
	defer client.Close()

	resp, err := client.Query(buildQuery(name, root))
	if err != nil {
		return nil, facilityError(BackendOSQuery, err)
	}
	if resp.Status != nil && resp.Status.Code != 0 {
		return nil, facilityError(BackendOSQuery, errors.New(resp.Status.Message))
	}

	prefix := strings.TrimSuffix(filepath.Clean(root), "/") + "/"
	paths := make([]string, 0, len(resp.Response))
	for _, row := range resp.Response {
		if p := row["path"]; strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// buildQuery renders the file table lookup. osquery's file table needs a
// path constraint; LIKE with %% makes it recurse below root.
func buildQuery(name, root string) string {
	root = strings.TrimSuffix(filepath.Clean(root), "/")
	return fmt.Sprintf(
		"SELECT path FROM file WHERE path LIKE '%s/%%%%' ESCAPE '\\' AND filename = '%s' AND type = 'regular'",
		quote(escapeLike(root)), quote(name))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// escapeLike makes the LIKE wildcards in s match literally under
// ESCAPE '\'.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// quote escapes a value for a single-quoted SQL string literal.
func quote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
