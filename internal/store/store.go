package store

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/profile"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/requirements"
	"github.com/Wijerty/pathfinder-fbxteam-sub000/internal/taxonomy"
)

// Vacancy is a requirement draft as stored in the dataset file.
type Vacancy struct {
	requirements.Draft `mapstructure:",squash"`
	Version            int64 `mapstructure:"version"`
}

type versioned struct {
	draft   requirements.Draft
	version int64
}

// FileStore serves vacancies, candidates and skills from a YAML or JSON dataset.
// It implements requirements.Source and profile.Source.
type FileStore struct {
	mu         sync.RWMutex
	vacancies  map[string]versioned
	candidates []*profile.Candidate
	taxonomy   *taxonomy.Taxonomy

	v      *viper.Viper
	logger *zap.Logger
}

// Load reads the dataset at path. When the file defines no skills the built-in
// taxonomy is used.
func Load(path string, logger *zap.Logger) (*FileStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading dataset %q: %w", path, err)
	}

	s := &FileStore{v: v, logger: logger, vacancies: map[string]versioned{}}
	if err := s.reload(); err != nil {
		return nil, fmt.Errorf("loading dataset %q: %w", path, err)
	}

	logger.Info("dataset loaded",
		zap.String("path", path),
		zap.Int("vacancies", len(s.vacancies)),
		zap.Int("candidates", len(s.candidates)),
		zap.Int("skills", s.taxonomy.Len()),
	)
	return s, nil
}

// LoadTaxonomy reads a skills catalogue from a standalone file with a top-level skills list.
func LoadTaxonomy(path string) (*taxonomy.Taxonomy, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading taxonomy %q: %w", path, err)
	}

	var skills []taxonomy.Skill
	if err := decode(v.Get("skills"), &skills); err != nil {
		return nil, fmt.Errorf("decoding skills: %w", err)
	}
	return taxonomy.New(skills)
}

// Watch reloads the dataset whenever the file changes. Vacancies whose content
// changed get a new version. onChange receives the ids of changed vacancies.
func (s *FileStore) Watch(onChange func(changed []string)) {
	s.v.OnConfigChange(func(e fsnotify.Event) {
		before := s.snapshotDrafts()
		if err := s.reload(); err != nil {
			s.logger.Warn("reloading dataset failed", zap.String("file", e.Name), zap.Error(err))
			return
		}

		var changed []string
		s.mu.RLock()
		for id, cur := range s.vacancies {
			if prev, ok := before[id]; !ok || !reflect.DeepEqual(prev, cur.draft) {
				changed = append(changed, id)
			}
		}
		s.mu.RUnlock()
		sort.Strings(changed)

		s.logger.Info("dataset reloaded", zap.String("file", e.Name), zap.Strings("changed_vacancies", changed))
		if onChange != nil {
			onChange(changed)
		}
	})
	s.v.WatchConfig()
}

func (s *FileStore) Draft(_ context.Context, id string) (requirements.Draft, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vac, ok := s.vacancies[id]
	if !ok {
		return requirements.Draft{}, 0, fmt.Errorf("%w: %s", requirements.ErrNotFound, id)
	}
	return vac.draft, vac.version, nil
}

// Update replaces a vacancy and returns its new version.
func (s *FileStore) Update(d requirements.Draft) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	version := s.vacancies[d.ID].version + 1
	s.vacancies[d.ID] = versioned{draft: d, version: version}
	return version
}

func (s *FileStore) Candidates(context.Context) ([]*profile.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*profile.Candidate, len(s.candidates))
	copy(out, s.candidates)
	return out, nil
}

func (s *FileStore) Taxonomy() *taxonomy.Taxonomy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.taxonomy
}

// VacancyIDs returns the known vacancy ids in sorted order.
func (s *FileStore) VacancyIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.vacancies))
	for id := range s.vacancies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *FileStore) reload() error {
	var vacancies []Vacancy
	if err := decode(s.v.Get("vacancies"), &vacancies); err != nil {
		return fmt.Errorf("decoding vacancies: %w", err)
	}

	var candidates []*profile.Candidate
	if err := decode(s.v.Get("candidates"), &candidates); err != nil {
		return fmt.Errorf("decoding candidates: %w", err)
	}

	var skills []taxonomy.Skill
	if err := decode(s.v.Get("skills"), &skills); err != nil {
		return fmt.Errorf("decoding skills: %w", err)
	}

	tax := taxonomy.Default()
	if len(skills) > 0 {
		var err error
		if tax, err = taxonomy.New(skills); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]versioned, len(vacancies))
	for _, vac := range vacancies {
		if vac.ID == "" {
			return fmt.Errorf("vacancy without id")
		}
		if _, dup := next[vac.ID]; dup {
			return fmt.Errorf("duplicate vacancy id %q", vac.ID)
		}

		version := vac.Version
		if version < 1 {
			version = 1
		}
		if prev, ok := s.vacancies[vac.ID]; ok {
			switch {
			case reflect.DeepEqual(prev.draft, vac.Draft):
				version = max(version, prev.version)
			case version <= prev.version:
				version = prev.version + 1
			}
		}
		next[vac.ID] = versioned{draft: vac.Draft, version: version}
	}

	s.vacancies = next
	s.candidates = candidates
	s.taxonomy = tax
	return nil
}

func (s *FileStore) snapshotDrafts() map[string]requirements.Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]requirements.Draft, len(s.vacancies))
	for id, v := range s.vacancies {
		out[id] = v.draft
	}
	return out
}

func decode(input, result any) error {
	if input == nil {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
		WeaklyTypedInput: true,
		Result:           result,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}
