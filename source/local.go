package source

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/sqlshift/sqlshift/internal/logger"
	"github.com/sqlshift/sqlshift/migration"
	"github.com/sqlshift/sqlshift/parser"
)

// Dir loads *.sql migration files from a local folder. The file name,
// extension included, is the migration name and its only ordering key.
type Dir struct {
	folder string
	lg     logger.Logger
}

var _ Source = (*Dir)(nil)

func NewDir(folder string, lg logger.Logger) *Dir {
	if lg == nil {
		lg = &logger.NullLogger{}
	}

	return &Dir{folder: folder, lg: lg}
}

func (d *Dir) IsValid() bool {
	info, err := os.Stat(d.folder)
	if err != nil {
		return false
	}

	return info.IsDir()
}

func (d *Dir) Load(ctx context.Context) (migration.Migrations, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	names, err := d.migrationFileNames()
	if err != nil {
		return nil, err
	}

	// buffered so that workers never block after an early return
	migrationsCh := make(chan *migration.Migration, len(names))
	errorsCh := make(chan error, len(names))
	var wg sync.WaitGroup

	for _, name := range names {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()

			m, err := d.readOne(name)
			if err != nil {
				errorsCh <- err
				return
			}

			migrationsCh <- m
		}(name)
	}

	go func() {
		wg.Wait()
		close(migrationsCh)
		close(errorsCh)
	}()

	var result migration.Migrations

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case m, ok := <-migrationsCh:
			if !ok {
				sort.Sort(result)
				return result, nil
			}

			result = append(result, m)
		case err, ok := <-errorsCh:
			if ok {
				d.lg.Error(err)
				return nil, err
			}
		}
	}
}

func (d *Dir) migrationFileNames() ([]string, error) {
	files, err := os.ReadDir(d.folder)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read migrations folder [%s]", d.folder)
	}

	var names []string
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), sqlExtension) {
			continue
		}

		names = append(names, f.Name())
	}

	return names, nil
}

func (d *Dir) readOne(name string) (*migration.Migration, error) {
	f, err := os.Open(filepath.Join(d.folder, name))
	if err != nil {
		return nil, errors.Wrapf(err, "could not open migration file [%s]", name)
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			d.lg.Error(closeErr)
		}
	}()

	return parser.Parse(name, f)
}
