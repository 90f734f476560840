package connector

import (
	"context"
	"sync"

	junoUtils "github.com/NethermindEth/juno/utils"
	"github.com/YohanTz/starknet-query/metrics"
	"github.com/YohanTz/starknet-query/query"
)

type State uint8

const (
	Disconnected State = iota
	Connecting
	Connected
	Failed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Failed:
		return "error"
	default:
		return "unknown"
	}
}

// Manager holds the active connector and its resolved account and chain, and
// keeps the query cache honest across connector switches: every cache entry
// keyed by the previous account is invalidated when the account changes.
type Manager struct {
	mu      sync.Mutex
	state   State
	active  Connector
	account *Account
	chain   Chain
	lastErr error

	cache       *query.Cache
	rpcEndpoint string
	logger      *junoUtils.ZapLogger
	tracer      metrics.Tracer
}

func NewManager(
	cache *query.Cache,
	rpcEndpoint string,
	logger *junoUtils.ZapLogger,
	tracer metrics.Tracer,
) *Manager {
	return &Manager{
		state:       Disconnected,
		cache:       cache,
		rpcEndpoint: rpcEndpoint,
		logger:      logger,
		tracer:      tracer,
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Err returns the failure that moved the manager into the error state.
func (m *Manager) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lastErr
}

// Connect activates the connector. When another connector is already
// connected it is disconnected first and the previous account's cache
// entries are invalidated.
func (m *Manager) Connect(ctx context.Context, c Connector) (*Account, error) {
	m.mu.Lock()
	previous := m.active
	previousAccount := m.account
	m.state = Connecting
	m.active = c
	m.account = nil
	m.lastErr = nil
	m.mu.Unlock()

	if previous != nil && previous != c {
		if err := previous.Disconnect(ctx); err != nil {
			m.logger.Warnw(
				"failed to disconnect previous connector",
				"connector", previous.ID(),
				"error", err.Error(),
			)
		}
		if previousAccount != nil {
			m.invalidateAccount(previousAccount)
		}
	}

	account, err := c.Connect(ctx)
	if err != nil {
		m.mu.Lock()
		m.state = Failed
		m.lastErr = err
		m.mu.Unlock()
		m.tracer.UpdateConnected(false)

		return nil, err
	}

	m.mu.Lock()
	m.state = Connected
	m.account = account
	m.chain = ChainFromID(account.ChainID, m.rpcEndpoint)
	m.mu.Unlock()

	m.tracer.UpdateConnected(true)
	m.logger.Infow(
		"connector active",
		"connector", c.ID(),
		"address", account.Address.String(),
		"chain", account.ChainID,
	)

	return account, nil
}

func (m *Manager) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	active := m.active
	account := m.account
	m.state = Disconnected
	m.active = nil
	m.account = nil
	m.lastErr = nil
	m.mu.Unlock()

	m.tracer.UpdateConnected(false)

	if account != nil {
		m.invalidateAccount(account)
	}
	if active == nil {
		return nil
	}

	return active.Disconnect(ctx)
}

func (m *Manager) Account() (*Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Connected || m.account == nil {
		return nil, query.MissingInputf("no account connected (state %s)", m.state)
	}

	return m.account, nil
}

func (m *Manager) Chain() (Chain, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.chain, m.state == Connected
}

// Invoker returns the active connector's write capability.
func (m *Manager) Invoker() (Invoker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != Connected || m.active == nil {
		return nil, query.MissingInputf("no account connected (state %s)", m.state)
	}

	invoker, ok := m.active.(Invoker)
	if !ok {
		return nil, query.Unsupportedf("connector %s cannot submit transactions", m.active.ID())
	}

	return invoker, nil
}

// SwitchNetwork delegates to the active connector and, on success,
// invalidates every entry scoped to the previous chain.
func (m *Manager) SwitchNetwork(ctx context.Context, chainID string) error {
	m.mu.Lock()
	active := m.active
	previousChain := m.chain.ID
	if m.state != Connected || active == nil {
		m.mu.Unlock()

		return query.MissingInputf("no account connected (state %s)", m.state)
	}
	m.mu.Unlock()

	if err := active.SwitchNetwork(ctx, chainID); err != nil {
		return err
	}

	account, err := active.Account()
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.account = account
	m.chain = ChainFromID(account.ChainID, m.rpcEndpoint)
	m.mu.Unlock()

	count := m.cache.InvalidateMatching(func(k query.Key) bool {
		return k.Chain == previousChain
	})
	m.logger.Infow(
		"switched network",
		"chain", chainID,
		"invalidated queries", count,
	)

	return nil
}

func (m *Manager) invalidateAccount(account *Account) {
	count := m.cache.InvalidateAccount(account.Address.String())
	m.logger.Debugw(
		"invalidated account-scoped queries",
		"address", account.Address.String(),
		"count", count,
	)
}
