package services

import (
	"sync"

	"github.com/amorlink/amorlink/models"
	"gorm.io/gorm"
)

// In-memory fakes over the db interfaces, shared by the service tests.

type fakeAuthRepo struct {
	users map[uint]*models.User
}

func newFakeAuthRepo(users ...*models.User) *fakeAuthRepo {
	repo := &fakeAuthRepo{users: make(map[uint]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeAuthRepo) CreateUser(user *models.User) (*models.User, error) {
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeAuthRepo) IsEmailExist(email string) error { return nil }
func (f *fakeAuthRepo) IsCPFExist(cpf string) error     { return nil }

func (f *fakeAuthRepo) FindUserByEmail(email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAuthRepo) FindUserByID(id uint) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAuthRepo) FindUserByPhone(phone string) (*models.User, error) {
	for _, u := range f.users {
		if models.NormalizePhone(u.Phone) == phone {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAuthRepo) FindUserByRegistrationToken(token string) (*models.User, error) {
	for _, u := range f.users {
		if u.RegistrationToken == token {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAuthRepo) UpdateUser(user *models.User) error { return nil }

func (f *fakeAuthRepo) UpdatePassword(password string, email string) error { return nil }

func (f *fakeAuthRepo) AddToBlackList(blacklist *models.Blacklist) error { return nil }

func (f *fakeAuthRepo) IsTokenInBlacklist(token string) bool { return false }

func (f *fakeAuthRepo) UpdateUserOnlineStatus(userID uint, online bool) error {
	if u, ok := f.users[userID]; ok {
		u.Online = online
	}
	return nil
}

type appendPairCall struct {
	SenderID    uint
	RecipientID uint
	Msg         models.ChatMessage
}

type fakeChatRepo struct {
	mu            sync.Mutex
	pairs         []appendPairCall
	appendErr     error
	conversations []models.Conversation
	listErr       error
	messages      []models.ChatMessage
	getErr        error
	markReadCalls [][2]uint
	markReadErr   error
}

func (f *fakeChatRepo) AppendMessage(ownerID, peerID uint, msg models.ChatMessage) (*models.Conversation, error) {
	return nil, f.appendErr
}

func (f *fakeChatRepo) AppendMessagePair(senderID, recipientID uint, msg models.ChatMessage) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.mu.Lock()
	f.pairs = append(f.pairs, appendPairCall{SenderID: senderID, RecipientID: recipientID, Msg: msg})
	f.mu.Unlock()
	return nil
}

func (f *fakeChatRepo) MarkRead(ownerID, peerID uint) error {
	f.markReadCalls = append(f.markReadCalls, [2]uint{ownerID, peerID})
	return f.markReadErr
}

func (f *fakeChatRepo) ListConversations(ownerID uint) ([]models.Conversation, error) {
	return f.conversations, f.listErr
}

func (f *fakeChatRepo) GetConversation(ownerID, peerID uint) ([]models.ChatMessage, error) {
	return f.messages, f.getErr
}

func (f *fakeChatRepo) pairCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pairs)
}

type fakeModelRepo struct {
	profiles      map[uint]*models.ModelProfile // keyed by user id
	onlineCalls   []uint
	findByUserErr error
}

func newFakeModelRepo(profiles ...*models.ModelProfile) *fakeModelRepo {
	repo := &fakeModelRepo{profiles: make(map[uint]*models.ModelProfile)}
	for _, p := range profiles {
		repo.profiles[p.UserID] = p
	}
	return repo
}

func (f *fakeModelRepo) ListModels(onlineOnly bool, page, limit int) ([]models.ModelProfile, int64, error) {
	out := make([]models.ModelProfile, 0, len(f.profiles))
	for _, p := range f.profiles {
		if onlineOnly && !p.IsOnline {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeModelRepo) FindModelByID(id uint) (*models.ModelProfile, error) {
	for _, p := range f.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeModelRepo) FindModelByUserID(userID uint) (*models.ModelProfile, error) {
	if f.findByUserErr != nil {
		return nil, f.findByUserErr
	}
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeModelRepo) SetModelOnline(userID uint, online bool) error {
	f.onlineCalls = append(f.onlineCalls, userID)
	if p, ok := f.profiles[userID]; ok {
		p.IsOnline = online
	}
	return nil
}

type fakeTransactionRepo struct {
	txns          map[string]*models.Transaction
	created       []*models.Transaction
	completeCalls int
	failedCalls   int
}

func newFakeTransactionRepo(txns ...*models.Transaction) *fakeTransactionRepo {
	repo := &fakeTransactionRepo{txns: make(map[string]*models.Transaction)}
	for _, t := range txns {
		repo.txns[t.TransactionID] = t
	}
	return repo
}

func (f *fakeTransactionRepo) CreateTransaction(txn *models.Transaction) (*models.Transaction, error) {
	f.txns[txn.TransactionID] = txn
	f.created = append(f.created, txn)
	return txn, nil
}

func (f *fakeTransactionRepo) FindByTransactionID(transactionID string) (*models.Transaction, error) {
	if t, ok := f.txns[transactionID]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTransactionRepo) ListTransactions(userID uint, page, limit int) ([]models.Transaction, int64, error) {
	out := []models.Transaction{}
	for _, t := range f.txns {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeTransactionRepo) CompleteAndCredit(txn *models.Transaction) error {
	f.completeCalls++
	txn.Status = models.TransactionCompleted
	return nil
}

func (f *fakeTransactionRepo) MarkFailed(txn *models.Transaction) error {
	f.failedCalls++
	txn.Status = models.TransactionFailed
	return nil
}

type sentEvent struct {
	UserID uint
	Event  string
	Data   interface{}
}

type fakeNotifier struct {
	mu     sync.Mutex
	sent   []sentEvent
	online map[uint]bool
}

func (f *fakeNotifier) Send(userID uint, event string, data interface{}) bool {
	f.mu.Lock()
	f.sent = append(f.sent, sentEvent{UserID: userID, Event: event, Data: data})
	f.mu.Unlock()
	return true
}

func (f *fakeNotifier) IsOnline(userID uint) bool {
	return f.online[userID]
}

func (f *fakeNotifier) events() []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentEvent(nil), f.sent...)
}

type bridgeCall struct {
	ModelUserID  uint
	SenderUserID uint
	Text         string
}

// fakeBridge signals each SendText on a channel so tests can wait for the
// async bridge goroutine.
type fakeBridge struct {
	calls chan bridgeCall
	err   error
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{calls: make(chan bridgeCall, 4)}
}

func (f *fakeBridge) SendText(modelUserID, senderUserID uint, text string) error {
	f.calls <- bridgeCall{ModelUserID: modelUserID, SenderUserID: senderUserID, Text: text}
	return f.err
}
