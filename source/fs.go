package source

import (
	"context"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/sqlshift/sqlshift/migration"
	"github.com/sqlshift/sqlshift/parser"
)

// FS loads migrations from any fs.FS, which makes embed.FS work: ship
// the migration files inside the binary and point FS at the directory.
type FS struct {
	fsys fs.FS
	dir  string
}

var _ Source = (*FS)(nil)

func NewFS(fsys fs.FS, dir string) *FS {
	return &FS{fsys: fsys, dir: dir}
}

func (s *FS) Load(ctx context.Context) (migration.Migrations, error) {
	entries, err := fs.ReadDir(s.fsys, s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read migrations dir [%s]", s.dir)
	}

	var result migration.Migrations
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if entry.IsDir() || !strings.HasSuffix(entry.Name(), sqlExtension) {
			continue
		}

		m, err := s.readOne(entry.Name())
		if err != nil {
			return nil, err
		}

		result = append(result, m)
	}

	sort.Sort(result)

	return result, nil
}

func (s *FS) readOne(name string) (*migration.Migration, error) {
	f, err := s.fsys.Open(path.Join(s.dir, name))
	if err != nil {
		return nil, errors.Wrapf(err, "could not open migration file [%s]", name)
	}
	defer f.Close()

	return parser.Parse(name, f)
}
