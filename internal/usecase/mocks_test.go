// File: internal/usecase/mocks_test.go
package usecase

import (
	"context"
	"fmt"
	"sync"

	"aura-studio/internal/domain"
	"aura-studio/internal/domain/model"
	"aura-studio/internal/domain/ports/repository"
)

// memSessionRepo is a small in-memory implementation used by unit tests.
type memSessionRepo struct {
	mu    sync.Mutex
	store map[string]*model.StudioSession
}

var _ repository.SessionRepository = (*memSessionRepo)(nil)

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{store: make(map[string]*model.StudioSession)}
}

func (m *memSessionRepo) Create(ctx context.Context, s *model.StudioSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[s.ID]; ok {
		return domain.ErrInvalidArgument
	}
	m.store[s.ID] = s.Clone()
	return nil
}

func (m *memSessionRepo) Find(ctx context.Context, id string) (*model.StudioSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.Clone(), nil
}

func (m *memSessionRepo) Update(ctx context.Context, id string, fn func(*model.StudioSession) error) (*model.StudioSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	next := s.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	m.store[id] = next
	return next.Clone(), nil
}

func (m *memSessionRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

// fakeGen is a scriptable generator: per-operation results, errors and
// call counters. Zero values produce sensible canned replies.
type fakeGen struct {
	mu sync.Mutex

	classifyN int
	parseN    int
	suggestN  int
	customN   int
	bgN       int
	chatN     int

	classifyErr error
	parseErr    error
	suggestErr  error
	customErr   error
	bgErr       error
	chatErr     error

	persona model.Persona
	record  *model.ResumeRecord
	themes  []model.Theme
	custom  model.Theme
	bgURI   string
	reply   string

	// bgBlock, when non-nil, is closed by the test to release pending
	// background generations.
	bgBlock chan struct{}
}

func newFakeGen() *fakeGen {
	return &fakeGen{
		persona: model.Persona{Persona: "The Builder", Title: "Engineer", Roast: "Tidy."},
		record: &model.ResumeRecord{
			Name:    "Alex Doe",
			Title:   "Engineer",
			Contact: model.Contact{Email: "alex@example.com"},
			Summary: "Ships.",
		},
		themes: []model.Theme{
			{ID: "dynamic-theme-0", Name: "One", Variant: model.VariantSafe},
			{ID: "dynamic-theme-1", Name: "Two", Variant: model.VariantBold},
			{ID: "dynamic-theme-2", Name: "Three", Variant: model.VariantCreative},
		},
		custom: model.Theme{ID: model.CustomThemeID, Name: "Custom", Variant: model.VariantCustom},
		bgURI:  "data:image/png;base64,AA==",
		reply:  "Looks fine.",
	}
}

func (f *fakeGen) ClassifyPersona(ctx context.Context, imageDataURI string) (model.Persona, error) {
	f.mu.Lock()
	f.classifyN++
	f.mu.Unlock()
	if f.classifyErr != nil {
		return model.Persona{}, f.classifyErr
	}
	return f.persona, nil
}

func (f *fakeGen) ParseResume(ctx context.Context, imageDataURI string) (*model.ResumeRecord, error) {
	f.mu.Lock()
	f.parseN++
	f.mu.Unlock()
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	return f.record.Clone(), nil
}

func (f *fakeGen) SuggestThemes(ctx context.Context, persona, title string) ([]model.Theme, error) {
	f.mu.Lock()
	f.suggestN++
	f.mu.Unlock()
	if f.suggestErr != nil {
		return nil, f.suggestErr
	}
	return append([]model.Theme(nil), f.themes...), nil
}

func (f *fakeGen) GenerateCustomTheme(ctx context.Context, userPrompt, persona string) (model.Theme, error) {
	f.mu.Lock()
	f.customN++
	f.mu.Unlock()
	if f.customErr != nil {
		return model.Theme{}, f.customErr
	}
	return f.custom, nil
}

func (f *fakeGen) GenerateBackground(ctx context.Context, theme model.Theme, persona string) (string, error) {
	if f.bgBlock != nil {
		<-f.bgBlock
	}
	f.mu.Lock()
	f.bgN++
	f.mu.Unlock()
	if f.bgErr != nil {
		return "", f.bgErr
	}
	return f.bgURI, nil
}

func (f *fakeGen) RefineChat(ctx context.Context, record *model.ResumeRecord, message string, history []model.ChatTurn) (string, error) {
	f.mu.Lock()
	f.chatN++
	f.mu.Unlock()
	if f.chatErr != nil {
		return "", f.chatErr
	}
	return f.reply, nil
}

func (f *fakeGen) calls() (classify, parse, suggest, bg int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.classifyN, f.parseN, f.suggestN, f.bgN
}

// sampleUpload builds a distinct upload per name.
func sampleUpload(name string) model.Upload {
	return model.Upload{
		FileName:     name,
		FileSize:     1234,
		FileModified: 1700000000,
		DataURI:      fmt.Sprintf("data:image/png;base64,QQ== %s", name),
	}
}
