package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/garyjia/claims-portal/internal/application/dispatcher"
	"github.com/garyjia/claims-portal/internal/application/port"
	"github.com/garyjia/claims-portal/internal/domain/entity"
	"github.com/garyjia/claims-portal/internal/domain/workflow"
)

var fixedNow = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

type mockClaimRepo struct {
	mu        sync.Mutex
	claims    map[string]*entity.Claim
	lastQuery port.ClaimQuery

	createFunc       func(ctx context.Context, claim *entity.Claim) error
	getByIDFunc      func(ctx context.Context, id string) (*entity.Claim, error)
	updateStatusFunc func(ctx context.Context, id string, status workflow.State, comments, updatedBy string) error
}

func newMockClaimRepo(claims ...*entity.Claim) *mockClaimRepo {
	m := &mockClaimRepo{claims: map[string]*entity.Claim{}}
	for _, c := range claims {
		m.claims[c.ID] = c
	}
	return m
}

func (m *mockClaimRepo) Create(ctx context.Context, claim *entity.Claim) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, claim)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *claim
	m.claims[claim.ID] = &cp
	return nil
}

func (m *mockClaimRepo) GetByID(ctx context.Context, id string) (*entity.Claim, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.claims[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *mockClaimRepo) List(ctx context.Context, q port.ClaimQuery) ([]*entity.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastQuery = q

	var out []*entity.Claim
	for _, c := range m.claims {
		if q.OwnerID != "" && c.OwnerID != q.OwnerID {
			continue
		}
		if !q.IncludeArchived && c.IsArchived() {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockClaimRepo) UpdateStatus(ctx context.Context, id string, status workflow.State, comments, updatedBy string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status, comments, updatedBy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.claims[id]
	if !ok {
		return fmt.Errorf("claim %s missing", id)
	}
	c.Status = status
	c.StatusComments = comments
	c.UpdatedBy = updatedBy
	return nil
}

func (m *mockClaimRepo) UpdateContact(ctx context.Context, claim *entity.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *claim
	m.claims[claim.ID] = &cp
	return nil
}

func (m *mockClaimRepo) SetInsurerClaimNumber(ctx context.Context, id, number, updatedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.claims[id]; ok {
		c.InsurerClaimNumber = number
		c.UpdatedBy = updatedBy
	}
	return nil
}

func (m *mockClaimRepo) status(id string) workflow.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.claims[id].Status
}

type mockDocRepo struct {
	mu     sync.Mutex
	docs   map[string]*entity.Document
	files  map[int64]*entity.DocumentFile
	nextID int64

	listByClaimFunc  func(ctx context.Context, claimID string) ([]*entity.Document, error)
	updateStatusFunc func(ctx context.Context, id string, status workflow.State, comments, reviewedBy string) error
	addFileFunc      func(ctx context.Context, file *entity.DocumentFile) error
}

func newMockDocRepo(docs ...*entity.Document) *mockDocRepo {
	m := &mockDocRepo{docs: map[string]*entity.Document{}, files: map[int64]*entity.DocumentFile{}}
	for _, d := range docs {
		m.docs[d.ID] = d
	}
	return m
}

func (m *mockDocRepo) Create(ctx context.Context, doc *entity.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *doc
	m.docs[doc.ID] = &cp
	return nil
}

func (m *mockDocRepo) GetByClaimAndType(ctx context.Context, claimID, documentType string) (*entity.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if d.ClaimID == claimID && d.DocumentType == documentType {
			cp := *d
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *mockDocRepo) ListByClaim(ctx context.Context, claimID string) ([]*entity.Document, error) {
	if m.listByClaimFunc != nil {
		return m.listByClaimFunc(ctx, claimID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.Document
	for _, d := range m.docs {
		if d.ClaimID == claimID {
			cp := *d
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockDocRepo) UpdateStatus(ctx context.Context, id string, status workflow.State, comments, reviewedBy string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status, comments, reviewedBy)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d := m.docs[id]
	d.Status = status
	d.Comments = comments
	d.ReviewedBy = reviewedBy
	return nil
}

func (m *mockDocRepo) AddFile(ctx context.Context, file *entity.DocumentFile) error {
	if m.addFileFunc != nil {
		return m.addFileFunc(ctx, file)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	file.ID = m.nextID
	cp := *file
	m.files[file.ID] = &cp
	if d, ok := m.docs[file.DocumentID]; ok {
		d.Files = append(d.Files, cp)
	}
	return nil
}

func (m *mockDocRepo) GetFile(ctx context.Context, id int64) (*entity.DocumentFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok {
		return nil, nil
	}
	cp := *f
	return &cp, nil
}

func (m *mockDocRepo) DeleteFile(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, id)
	return nil
}

func (m *mockDocRepo) doc(claimID, documentType string) *entity.Document {
	d, _ := m.GetByClaimAndType(context.Background(), claimID, documentType)
	return d
}

type mockHistoryRepo struct {
	mu      sync.Mutex
	entries []*entity.ClaimHistory

	createFunc func(ctx context.Context, history *entity.ClaimHistory) error
}

func (m *mockHistoryRepo) Create(ctx context.Context, history *entity.ClaimHistory) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, history)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, history)
	return nil
}

func (m *mockHistoryRepo) ListByClaim(ctx context.Context, claimID string) ([]*entity.ClaimHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.ClaimHistory
	for _, h := range m.entries {
		if h.ClaimID == claimID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *mockHistoryRepo) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, h := range m.entries {
		out[i] = h.Action
	}
	return out
}

type mockProfileRepo struct {
	upserted []*entity.InsuredProfile

	upsertFunc func(ctx context.Context, profile *entity.InsuredProfile) error
}

func (m *mockProfileRepo) Upsert(ctx context.Context, profile *entity.InsuredProfile) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, profile)
	}
	m.upserted = append(m.upserted, profile)
	return nil
}

func (m *mockProfileRepo) ListByOwner(ctx context.Context, ownerID string) ([]*entity.InsuredProfile, error) {
	var out []*entity.InsuredProfile
	for _, p := range m.upserted {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockStorage struct {
	keys []string

	putFunc func(ctx context.Context, key string, content []byte, contentType string) (*port.StoredObject, error)
}

func (m *mockStorage) Put(ctx context.Context, key string, content []byte, contentType string) (*port.StoredObject, error) {
	if m.putFunc != nil {
		return m.putFunc(ctx, key, content, contentType)
	}
	m.keys = append(m.keys, key)
	return &port.StoredObject{Key: key, URL: m.URL(key), Size: int64(len(content))}, nil
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	return nil
}

func (m *mockStorage) URL(key string) string {
	return "https://files.test/" + key
}

type mockCRM struct {
	contacts []port.ContactSync
	updates  []port.StatusUpdate

	sendStatusUpdateFunc func(ctx context.Context, u port.StatusUpdate) error
}

func (m *mockCRM) SyncContact(ctx context.Context, c port.ContactSync) error {
	m.contacts = append(m.contacts, c)
	return nil
}

func (m *mockCRM) SendStatusUpdate(ctx context.Context, u port.StatusUpdate) error {
	if m.sendStatusUpdateFunc != nil {
		return m.sendStatusUpdateFunc(ctx, u)
	}
	m.updates = append(m.updates, u)
	return nil
}

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

var (
	client   = entity.Principal{Subject: "client-1", Roles: []string{entity.RoleClient}}
	stranger = entity.Principal{Subject: "client-2", Roles: []string{entity.RoleClient}}
	operator = entity.Principal{Subject: "op-1", Roles: []string{entity.RoleOperator}}
)

func newClaim(id string, status workflow.State) *entity.Claim {
	return &entity.Claim{
		ID:           id,
		OwnerID:      client.Subject,
		ContactEmail: "ana@example.com",
		ContactPhone: "+584121234567",
		Insured: entity.InsuredParty{
			Name:         "Ana Pérez",
			PolicyNumber: "POL-001",
			Insurer:      "Seguros Caracas",
		},
		Category: "maternidad",
		Status:   status,
	}
}

type claimFixture struct {
	svc      *claimServiceImpl
	claims   *mockClaimRepo
	history  *mockHistoryRepo
	profiles *mockProfileRepo
}

func newClaimFixture(claims ...*entity.Claim) *claimFixture {
	f := &claimFixture{
		claims:   newMockClaimRepo(claims...),
		history:  &mockHistoryRepo{},
		profiles: &mockProfileRepo{},
	}
	svc := NewClaimService(f.claims, f.history, f.profiles, &mockTxManager{}, dispatcher.NewDispatcher(), &mockLogger{}).(*claimServiceImpl)
	svc.now = func() time.Time { return fixedNow }
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	f.svc = svc
	return f
}

type docFixture struct {
	svc     *documentServiceImpl
	claims  *mockClaimRepo
	docs    *mockDocRepo
	history *mockHistoryRepo
	storage *mockStorage
}

func newDocFixture(claims []*entity.Claim, docs ...*entity.Document) *docFixture {
	f := &docFixture{
		claims:  newMockClaimRepo(claims...),
		docs:    newMockDocRepo(docs...),
		history: &mockHistoryRepo{},
		storage: &mockStorage{},
	}
	policy := UploadPolicy{MaxFileSize: 1024, MaxFiles: 5, AllowedTypes: []string{"application/pdf", "image/jpeg"}}
	svc := NewDocumentService(f.claims, f.docs, f.history, f.storage, &mockTxManager{}, dispatcher.NewDispatcher(), policy, &mockLogger{}).(*documentServiceImpl)
	svc.now = func() time.Time { return fixedNow }
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("doc-%d", n)
	}
	f.svc = svc
	return f
}
