package core

import (
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"totemic/config"
	"totemic/core/state"
	"totemic/core/types"
	"totemic/native/boost"
	"totemic/native/merit"
	"totemic/registry"
	"totemic/services/randomd"
	"totemic/storage"
)

// Node assembles the ledger engines over a single state manager and keeps
// them consistent with the configured collaborators.
type Node struct {
	log      *slog.Logger
	db       storage.Database
	state    *state.Manager
	bank     *Bank
	totems   *TotemDirectory
	registry *registry.Manual
	merit    *merit.Engine
	boost    *boost.Engine
	oracle   *randomd.Oracle
}

// NewNode wires the engines from configuration. The database is owned by the
// caller; Close releases only node-internal resources.
func NewNode(cfg *config.Config, db storage.Database, log *slog.Logger) (*Node, error) {
	if log == nil {
		log = slog.Default()
	}
	st := state.NewManager(db)
	st.SetEmitter(eventLogger{log: log})

	seed, err := registrySeed(cfg)
	if err != nil {
		return nil, err
	}
	reg := registry.NewManual(seed)

	bank := NewBank(st)
	totems := NewTotemDirectory(st)

	tranches, err := merit.LoadTranches(cfg.VestingFile)
	if err != nil {
		return nil, fmt.Errorf("core: load vesting schedule: %w", err)
	}

	admin, err := config.Address(cfg.Registry.Admin)
	if err != nil {
		return nil, err
	}
	meritParams, err := meritParams(cfg)
	if err != nil {
		return nil, err
	}
	meritEngine, err := merit.NewEngine(st, bank, totems, reg, tranches, meritParams, admin)
	if err != nil {
		return nil, err
	}

	boostParams, err := boostParams(cfg)
	if err != nil {
		return nil, err
	}
	boostEngine, err := boost.NewEngine(st, meritEngine, bank, reg, boostParams)
	if err != nil {
		return nil, err
	}
	if signer, err := config.Address(cfg.Registry.BoostSigner); err != nil {
		return nil, err
	} else if signer != ([20]byte{}) {
		boostEngine.SetSigner(signer)
	}

	node := &Node{
		log:      log,
		db:       db,
		state:    st,
		bank:     bank,
		totems:   totems,
		registry: reg,
		merit:    meritEngine,
		boost:    boostEngine,
	}
	if strings.EqualFold(cfg.Coordinator.Mode, "local") {
		coordinator := reg.CoordinatorAddress()
		if coordinator == ([20]byte{}) {
			return nil, fmt.Errorf("core: local coordinator mode requires registry.Coordinator")
		}
		node.oracle = randomd.New(coordinator, boostEngine, log.With("component", "randomd"), randomd.Options{
			MinDelay: time.Duration(cfg.Coordinator.MinDelayMillis) * time.Millisecond,
			MaxDelay: time.Duration(cfg.Coordinator.MaxDelayMillis) * time.Millisecond,
			NextID:   st.NextRandomRequestID,
		})
		boostEngine.SetCoordinator(node.oracle)
	} else {
		// External mode: ids are allocated locally, fulfillments arrive over
		// the authenticated boost_fulfill RPC from the registry coordinator.
		boostEngine.SetCoordinator(NewRequestSequencer(st))
	}
	return node, nil
}

// Merit exposes the merit ledger engine.
func (n *Node) Merit() *merit.Engine { return n.merit }

// Boost exposes the boost streak engine.
func (n *Node) Boost() *boost.Engine { return n.boost }

// Bank exposes the settlement layer.
func (n *Node) Bank() *Bank { return n.bank }

// Totems exposes the totem-token directory.
func (n *Node) Totems() *TotemDirectory { return n.totems }

// Registry exposes the mutable collaborator registry.
func (n *Node) Registry() *registry.Manual { return n.registry }

// State exposes the underlying state manager.
func (n *Node) State() *state.Manager { return n.state }

// Close stops the local oracle if one is running.
func (n *Node) Close() {
	if n.oracle != nil {
		n.oracle.Close()
	}
}

// eventLogger writes every engine event to the structured log.
type eventLogger struct {
	log *slog.Logger
}

func (l eventLogger) Emit(evt *types.Event) {
	if evt == nil {
		return
	}
	attrs := make([]any, 0, len(evt.Attributes)*2)
	for key, value := range evt.Attributes {
		attrs = append(attrs, key, value)
	}
	l.log.With("event", evt.Type).Info("ledger event", attrs...)
}

func registrySeed(cfg *config.Config) (registry.Static, error) {
	var seed registry.Static
	var err error
	if seed.Token, err = config.Address(cfg.Registry.Token); err != nil {
		return seed, err
	}
	if seed.Treasury, err = config.Address(cfg.Registry.Treasury); err != nil {
		return seed, err
	}
	if seed.Factory, err = config.Address(cfg.Registry.Factory); err != nil {
		return seed, err
	}
	if seed.Coordinator, err = config.Address(cfg.Registry.Coordinator); err != nil {
		return seed, err
	}
	return seed, nil
}

func meritParams(cfg *config.Config) (merit.Params, error) {
	params := merit.DefaultParams()
	overrides := cfg.Merit
	if overrides.PeriodSeconds > 0 {
		params.PeriodSeconds = overrides.PeriodSeconds
	}
	if overrides.PeriodsPerYear > 0 {
		params.PeriodsPerYear = overrides.PeriodsPerYear
	}
	if overrides.MythumWindowSeconds > 0 {
		params.MythumWindowSeconds = overrides.MythumWindowSeconds
	}
	if overrides.MythumMultiplierBps > 0 {
		params.MythumMultiplierBps = uint32(overrides.MythumMultiplierBps)
	}
	if overrides.BoostPoints > 0 {
		params.BoostPoints = new(big.Int).SetUint64(overrides.BoostPoints)
	}
	if strings.TrimSpace(overrides.BoostFeeWei) != "" {
		fee, err := parseWei(overrides.BoostFeeWei)
		if err != nil {
			return params, fmt.Errorf("core: merit.BoostFeeWei: %w", err)
		}
		params.BoostFee = fee
	}
	return params, params.Validate()
}

func boostParams(cfg *config.Config) (boost.Params, error) {
	params := boost.DefaultParams()
	overrides := cfg.Boost
	if overrides.BoostIntervalSeconds > 0 {
		params.BoostIntervalSeconds = overrides.BoostIntervalSeconds
	}
	if overrides.BoostWindowSeconds > 0 {
		params.BoostWindowSeconds = overrides.BoostWindowSeconds
	}
	if overrides.SignatureValiditySecs > 0 {
		params.SignatureValiditySeconds = overrides.SignatureValiditySecs
	}
	if overrides.BasePoints > 0 {
		params.BasePoints = new(big.Int).SetUint64(overrides.BasePoints)
	}
	if strings.TrimSpace(overrides.PremiumPriceWei) != "" {
		price, err := parseWei(overrides.PremiumPriceWei)
		if err != nil {
			return params, fmt.Errorf("core: boost.PremiumPriceWei: %w", err)
		}
		params.PremiumPrice = price
	}
	if len(overrides.Milestones) > 0 {
		params.Milestones = append([]uint64(nil), overrides.Milestones...)
		if len(overrides.MilestoneURIs) > 0 && len(overrides.MilestoneURIs) != len(overrides.Milestones) {
			return params, fmt.Errorf("core: boost.MilestoneURIs must match boost.Milestones")
		}
		params.MilestoneURIs = make(map[uint64]string, len(overrides.MilestoneURIs))
		for i, uri := range overrides.MilestoneURIs {
			params.MilestoneURIs[overrides.Milestones[i]] = uri
		}
	}
	return params, params.Validate()
}

func parseWei(value string) (*big.Int, error) {
	parsed, ok := new(big.Int).SetString(strings.TrimSpace(value), 10)
	if !ok || parsed.Sign() < 0 {
		return nil, fmt.Errorf("invalid amount %q", value)
	}
	return parsed, nil
}
