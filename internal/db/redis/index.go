package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/gumby/internal/db"
)

// refreshInterval is how often Refresh re-reads FT.INFO while indexing.
var refreshInterval = 50 * time.Millisecond

// CreateIndex creates an FT index from the given definition.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	args, err := buildCreateArgs(def)
	if err != nil {
		return err
	}

	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return db.ErrIndexExists
		}
		return classify(db.OpCreateIndex, err)
	}
	return nil
}

// DropIndex removes an FT index by name. With deleteDocs the indexed
// documents are removed as well (FT.DROPINDEX ... DD).
func (s *Store) DropIndex(ctx context.Context, name string, deleteDocs bool) error {
	args := []string{name}
	if deleteDocs {
		args = append(args, "DD")
	}
	cmd := s.b().Arbitrary("FT.DROPINDEX").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") {
			return db.ErrIndexNotFound
		}
		return classify(db.OpDropIndex, err)
	}
	return nil
}

// IndexExists probes index existence via FT.INFO; "unknown index name" means absent.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	_, err := s.IndexInfo(ctx, name)
	if errors.Is(err, db.ErrIndexNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// IndexInfo reads document count and indexing progress from FT.INFO.
func (s *Store) IndexInfo(ctx context.Context, name string) (db.IndexInfo, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	res := s.do(ctx, cmd)
	if err := res.Error(); err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") {
			return db.IndexInfo{}, db.ErrIndexNotFound
		}
		return db.IndexInfo{}, classify(db.OpIndexInfo, err)
	}
	raw, err := res.ToArray()
	if err != nil {
		return db.IndexInfo{}, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return parseIndexInfo(name, raw), nil
}

// Refresh blocks until the index has caught up with every written document.
func (s *Store) Refresh(ctx context.Context, name string) error {
	ticker := time.NewTicker(refreshInterval)
	defer ticker.Stop()

	for {
		info, err := s.IndexInfo(ctx, name)
		if err != nil {
			return err
		}
		if !info.Indexing {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("refresh %s: %w", name, ctx.Err())
		case <-ticker.C:
		}
	}
}

func parseIndexInfo(name string, raw []rueidis.RedisMessage) db.IndexInfo {
	info := db.IndexInfo{Name: name, PercentIndexed: 1}
	for i := 0; i+1 < len(raw); i += 2 {
		key := scalar(&raw[i])
		val := scalar(&raw[i+1])
		switch key {
		case "index_name":
			if val != "" {
				info.Name = val
			}
		case "num_docs":
			if n, err := strconv.ParseFloat(val, 64); err == nil {
				info.NumDocs = int(n)
			}
		case "indexing":
			info.Indexing = val != "" && val != "0"
		case "percent_indexed":
			if f, err := strconv.ParseFloat(val, 64); err == nil {
				info.PercentIndexed = f
			}
		}
	}
	return info
}

// scalar renders a string, integer or float reply as text; anything else is "".
func scalar(m *rueidis.RedisMessage) string {
	switch {
	case m.IsString():
		s, _ := m.ToString()
		return s
	case m.IsInt64():
		n, _ := m.AsInt64()
		return strconv.FormatInt(n, 10)
	case m.IsFloat64():
		f, _ := m.AsFloat64()
		return strconv.FormatFloat(f, 'f', -1, 64)
	default:
		return ""
	}
}

func buildCreateArgs(idx *db.IndexDefinition) ([]string, error) {
	if err := idx.Validate(); err != nil {
		return nil, err
	}

	args := []string{idx.Name}

	storage := idx.StorageType
	if storage == "" {
		storage = db.StorageHash
	}
	args = append(args, "ON", string(storage))

	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}

	args = append(args, "SCHEMA")

	for i := range idx.Fields {
		fieldArgs, err := buildFieldArgs(&idx.Fields[i])
		if err != nil {
			return nil, err
		}
		args = append(args, fieldArgs...)
	}

	return args, nil
}

func buildFieldArgs(f *db.IndexField) ([]string, error) {
	args := []string{f.Name}

	if f.Alias != "" {
		args = append(args, "AS", f.Alias)
	}

	switch f.Type {
	case db.IndexFieldNumeric:
		args = append(args, "NUMERIC")

	case db.IndexFieldText:
		args = append(args, "TEXT")

	case db.IndexFieldGeo:
		args = append(args, "GEO")

	case db.IndexFieldTag:
		args = append(args, "TAG")
		if f.TagSeparator != "" {
			args = append(args, "SEPARATOR", f.TagSeparator)
		}
		if f.TagCaseSensitive {
			args = append(args, "CASESENSITIVE")
		}

	default:
		return nil, fmt.Errorf("field %s: unknown field type", f.Name)
	}

	if f.Sortable {
		args = append(args, "SORTABLE")
	}

	return args, nil
}
