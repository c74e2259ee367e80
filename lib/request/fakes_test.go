package requesthandler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	notificationdispatcher "policy-portal-backend/lib/notification/dispatcher"
	policystore "policy-portal-backend/lib/policy/store"
	approvalstore "policy-portal-backend/lib/request/approval-store"
	requeststore "policy-portal-backend/lib/request/store"
	userstore "policy-portal-backend/lib/user/store"
	"policy-portal-backend/models"
	notificationapimodels "policy-portal-backend/models/api/notification"
	requestapimodels "policy-portal-backend/models/api/request"
	dbmodels "policy-portal-backend/models/db"
)

// memDB is an in-memory stand-in for the database. Transactions are emulated
// by snapshotting the state and restoring it when the callback fails.
type memDB struct {
	mu        sync.Mutex
	seq       int
	clock     time.Time
	roles     map[string]dbmodels.Role
	users     map[string]dbmodels.User
	policies  map[string]dbmodels.Policy
	requests  map[string]dbmodels.Request
	steps     map[string][]dbmodels.RequestStep
	approvals []dbmodels.Approval
	// beforeSwap runs right before a status compare-and-swap, with the lock held.
	beforeSwap func(db *memDB, requestID string)
}

func newMemDB() *memDB {
	return &memDB{
		clock:    time.Date(2026, 1, 9, 5, 37, 0, 0, time.UTC),
		roles:    map[string]dbmodels.Role{},
		users:    map[string]dbmodels.User{},
		policies: map[string]dbmodels.Policy{},
		requests: map[string]dbmodels.Request{},
		steps:    map[string][]dbmodels.RequestStep{},
	}
}

func (m *memDB) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%v-%v", prefix, m.seq)
}

func (m *memDB) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memDB) addRole(name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID("role")
	m.roles[id] = dbmodels.Role{BaseModel: dbmodels.BaseModel{ID: id}, Name: name}
	return id
}

func (m *memDB) addUser(name, roleID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID("user")
	m.users[id] = dbmodels.User{BaseModel: dbmodels.BaseModel{ID: id}, Name: name, Email: name + "@test.local", RoleID: roleID}
	return id
}

func (m *memDB) assignRole(userID, roleID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := m.users[userID]
	user.RoleID = roleID
	m.users[userID] = user
}

type stepDef struct {
	roleID  string
	isFinal bool
}

func (m *memDB) addPolicy(name string, isActive bool, steps ...stepDef) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID("policy")
	policy := dbmodels.Policy{BaseModel: dbmodels.BaseModel{ID: id}, Name: name, IsActive: isActive}
	for idx, step := range steps {
		policy.Steps = append(policy.Steps, dbmodels.WorkflowStep{
			BaseModel:   dbmodels.BaseModel{ID: m.nextID("step")},
			PolicyID:    id,
			StepOrder:   idx,
			RoleID:      step.roleID,
			IsFinalStep: step.isFinal,
		})
	}
	m.policies[id] = policy
	return id
}

// setStepOrders renumbers the policy steps, keeping their sequence.
func (m *memDB) setStepOrders(policyID string, orders ...int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	policy := m.policies[policyID]
	for idx := range policy.Steps {
		policy.Steps[idx].StepOrder = orders[idx]
	}
	m.policies[policyID] = policy
}

func (m *memDB) approvalCount(requestID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, approval := range m.approvals {
		if approval.RequestID == requestID {
			count++
		}
	}
	return count
}

func (m *memDB) status(requestID string) models.RequestStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[requestID].Status
}

type memSnapshot struct {
	seq       int
	requests  map[string]dbmodels.Request
	steps     map[string][]dbmodels.RequestStep
	approvals []dbmodels.Approval
}

func (m *memDB) snapshot() memSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := memSnapshot{
		seq:       m.seq,
		requests:  map[string]dbmodels.Request{},
		steps:     map[string][]dbmodels.RequestStep{},
		approvals: append([]dbmodels.Approval{}, m.approvals...),
	}
	for id, rec := range m.requests {
		snap.requests[id] = rec
	}
	for id, list := range m.steps {
		snap.steps[id] = list
	}
	return snap
}

func (m *memDB) restore(snap memSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq = snap.seq
	m.requests = snap.requests
	m.steps = snap.steps
	m.approvals = snap.approvals
}

// loadRequest assembles a request with its relations. The lock must be held.
func (m *memDB) loadRequest(id string) *dbmodels.Request {
	rec, ok := m.requests[id]
	if !ok {
		return nil
	}
	if policy, ok := m.policies[rec.PolicyID]; ok {
		rec.Policy = &policy
	}
	if creator, ok := m.users[rec.CreatedByUserID]; ok {
		rec.CreatedBy = &creator
	}
	rec.Steps = []dbmodels.RequestStep{}
	for _, step := range m.steps[id] {
		if role, ok := m.roles[step.RoleID]; ok {
			step.Role = &role
		}
		rec.Steps = append(rec.Steps, step)
	}
	sort.Slice(rec.Steps, func(a, b int) bool {
		return rec.Steps[a].StepOrder < rec.Steps[b].StepOrder
	})
	rec.Approvals = []dbmodels.Approval{}
	for _, approval := range m.approvals {
		if approval.RequestID != id {
			continue
		}
		if approver, ok := m.users[approval.ApproverUserID]; ok {
			approval.ApproverUser = &approver
		}
		rec.Approvals = append(rec.Approvals, approval)
	}
	return &rec
}

func (m *memDB) stores() stores {
	return stores{
		request:  memRequestStore{db: m},
		approval: memApprovalStore{db: m},
		policy:   memPolicyStore{db: m},
		user:     memUserStore{db: m},
	}
}

func (m *memDB) inTx(fn func(s stores) error) error {
	snap := m.snapshot()
	err := fn(m.stores())
	if err != nil {
		m.restore(snap)
	}
	return err
}

type memRequestStore struct {
	requeststore.Provider
	db *memDB
}

func (s memRequestStore) Create(rec dbmodels.Request) (string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	rec.ID = s.db.nextID("request")
	rec.CreatedAt = s.db.tick()
	for idx := range rec.Steps {
		rec.Steps[idx].ID = s.db.nextID("request-step")
		rec.Steps[idx].RequestID = rec.ID
	}
	s.db.steps[rec.ID] = rec.Steps
	rec.Steps = nil
	s.db.requests[rec.ID] = rec
	return rec.ID, nil
}

func (s memRequestStore) GetByID(id string) (*dbmodels.Request, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.db.loadRequest(id), nil
}

func (s memRequestStore) GetForUpdate(id string) (*dbmodels.Request, error) {
	return s.GetByID(id)
}

func (s memRequestStore) CompareAndSwapStatus(id string, expected, status models.RequestStatus) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if s.db.beforeSwap != nil {
		s.db.beforeSwap(s.db, id)
	}
	rec, ok := s.db.requests[id]
	if !ok || rec.Status != expected {
		return false, nil
	}
	rec.Status = status
	s.db.requests[id] = rec
	return true, nil
}

func (s memRequestStore) filtered(filter requestapimodels.RequestFilter) []dbmodels.Request {
	result := []dbmodels.Request{}
	for id, rec := range s.db.requests {
		if filter.CreatedByUserID != "" && rec.CreatedByUserID != filter.CreatedByUserID {
			continue
		}
		if filter.PolicyID != "" && rec.PolicyID != filter.PolicyID {
			continue
		}
		if filter.Status != "" && rec.Status != filter.Status {
			continue
		}
		result = append(result, *s.db.loadRequest(id))
	}
	sort.Slice(result, func(a, b int) bool {
		return result[a].CreatedAt.Before(result[b].CreatedAt)
	})
	return result
}

func (s memRequestStore) List(filter requestapimodels.RequestFilter) ([]dbmodels.Request, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.filtered(filter), nil
}

func (s memRequestStore) ListCount(filter requestapimodels.RequestFilter) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return int64(len(s.filtered(filter))), nil
}

func (s memRequestStore) ListByStatus(status models.RequestStatus) ([]dbmodels.Request, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return s.filtered(requestapimodels.RequestFilter{Status: status}), nil
}

func (s memRequestStore) Delete(id string) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	for _, approval := range s.db.approvals {
		if approval.RequestID == id && (approval.ActionDate != nil || approval.Status != models.ApprovalStatusPending) {
			return fmt.Errorf("request %v has decided approvals", id)
		}
	}
	delete(s.db.requests, id)
	delete(s.db.steps, id)
	kept := []dbmodels.Approval{}
	for _, approval := range s.db.approvals {
		if approval.RequestID != id {
			kept = append(kept, approval)
		}
	}
	s.db.approvals = kept
	return nil
}

type memApprovalStore struct {
	approvalstore.Provider
	db *memDB
}

func (s memApprovalStore) Create(rec dbmodels.Approval) (string, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	rec.ID = s.db.nextID("approval")
	rec.CreatedAt = s.db.tick()
	s.db.approvals = append(s.db.approvals, rec)
	return rec.ID, nil
}

type memPolicyStore struct {
	policystore.Provider
	db *memDB
}

func (s memPolicyStore) GetByID(id string) (*dbmodels.Policy, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	rec, ok := s.db.policies[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

type memUserStore struct {
	userstore.Provider
	db *memDB
}

func (s memUserStore) GetByID(id string) (*dbmodels.User, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	rec, ok := s.db.users[id]
	if !ok {
		return nil, nil
	}
	if role, ok := s.db.roles[rec.RoleID]; ok {
		rec.Role = &role
	}
	return &rec, nil
}

type sentMessage struct {
	roleID string
	msg    notificationapimodels.Message
}

type fakeNotifier struct {
	notificationdispatcher.Provider
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeNotifier) Dispatch(msg notificationapimodels.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{msg: msg})
}

func (f *fakeNotifier) DispatchToRole(roleID string, msg notificationapimodels.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{roleID: roleID, msg: msg})
}

func (f *fakeNotifier) reset() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := f.sent
	f.sent = nil
	return result
}

func newTestHandler(m *memDB, notifier *fakeNotifier) impl {
	return impl{
		stores:   m.stores(),
		inTx:     m.inTx,
		notifier: func() notificationdispatcher.Provider { return notifier },
		lockWait: time.Second,
		now: func() time.Time {
			m.mu.Lock()
			defer m.mu.Unlock()
			return m.tick()
		},
	}
}
