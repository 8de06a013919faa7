package rpc

import (
	"math/big"
	"net/http"
)

func (s *Server) handleBoostFree(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		addressedParams
		Timestamp int64  `json:"timestamp"`
		Signature string `json:"signature"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, totem, err := params.decode()
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	sig, err := parseHex("signature", params.Signature)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	reward, err := s.node.Boost().FreeBoost(caller, totem, params.Timestamp, sig)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"reward": reward.String()})
}

func (s *Server) handleBoostPremium(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		addressedParams
		Payment string `json:"payment"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, totem, err := params.decode()
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	payment, err := parseAmount("payment", params.Payment)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	requestID, err := s.node.Boost().PremiumBoost(caller, totem, payment)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"requestId": requestID})
}

func (s *Server) handleBoostFulfill(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Caller      string   `json:"caller"`
		RequestID   uint64   `json:"requestId"`
		RandomWords []string `json:"randomWords"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	words := make([]*big.Int, 0, len(params.RandomWords))
	for _, raw := range params.RandomWords {
		word, err := parseAmount("randomWords", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
			return
		}
		words = append(words, word)
	}
	total, err := s.node.Boost().Fulfill(caller, params.RequestID, words)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"reward": total.String()})
}

type streakResult struct {
	StreakIntervals    uint64 `json:"streakIntervals"`
	MultiplierPercent  uint64 `json:"multiplierPercent"`
	GraceDaysEarned    uint64 `json:"graceDaysEarned"`
	GraceDaysWasted    uint64 `json:"graceDaysWasted"`
	GraceDaysAvailable uint64 `json:"graceDaysAvailable"`
	ReleasedBadgeCount uint64 `json:"releasedBadgeCount"`
	LastFreeBoost      uint64 `json:"lastFreeBoost"`
	LastPremiumBoost   uint64 `json:"lastPremiumBoost"`
}

func (s *Server) handleBoostStreak(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		User  string `json:"user"`
		Totem string `json:"totem"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	user, err := parseAddress("user", params.User)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	totem, err := parseAddress("totem", params.Totem)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	snapshot, err := s.node.Boost().Streak(user, totem)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, streakResult{
		StreakIntervals:    snapshot.StreakIntervals,
		MultiplierPercent:  snapshot.MultiplierPercent,
		GraceDaysEarned:    snapshot.GraceDaysEarned,
		GraceDaysWasted:    snapshot.GraceDaysWasted,
		GraceDaysAvailable: snapshot.GraceDaysAvailable,
		ReleasedBadgeCount: snapshot.ReleasedBadgeCount,
		LastFreeBoost:      snapshot.LastFreeBoost,
		LastPremiumBoost:   snapshot.LastPremiumBoost,
	})
}

func (s *Server) handleBoostPendingRequests(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	ids, err := s.node.Boost().PendingRequests()
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string][]uint64{"requestIds": ids})
}

func (s *Server) handleBoostPendingReward(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		RequestID uint64 `json:"requestId"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	pending, ok, err := s.node.Boost().PendingReward(params.RequestID)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	if !ok {
		writeResult(w, req.ID, map[string]bool{"known": false})
		return
	}
	writeResult(w, req.ID, map[string]interface{}{
		"known": true,
		"user":  encodeAddress(pending.User),
		"totem": encodeAddress(pending.Totem),
	})
}

func (s *Server) handleBoostBadgeCredits(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		User      string `json:"user"`
		Milestone uint64 `json:"milestone"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	user, err := parseAddress("user", params.User)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	credits, err := s.node.Boost().BadgeCredits(user, params.Milestone)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"credits": credits})
}

func (s *Server) handleBoostMintBadge(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Caller    string `json:"caller"`
		Milestone uint64 `json:"milestone"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress("caller", params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.Boost().MintBadge(caller, params.Milestone); err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"minted": true})
}

type boostParamsResult struct {
	BoostIntervalSeconds     uint64   `json:"boostIntervalSeconds"`
	BoostWindowSeconds       uint64   `json:"boostWindowSeconds"`
	SignatureValiditySeconds uint64   `json:"signatureValiditySeconds"`
	BasePoints               string   `json:"basePoints"`
	PremiumPrice             string   `json:"premiumPrice"`
	Milestones               []uint64 `json:"milestones"`
}

func (s *Server) handleBoostParams(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	params := s.node.Boost().Params()
	writeResult(w, req.ID, boostParamsResult{
		BoostIntervalSeconds:     params.BoostIntervalSeconds,
		BoostWindowSeconds:       params.BoostWindowSeconds,
		SignatureValiditySeconds: params.SignatureValiditySeconds,
		BasePoints:               params.BasePoints.String(),
		PremiumPrice:             params.PremiumPrice.String(),
		Milestones:               params.Milestones,
	})
}

func (s *Server) handleBankBalance(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Address string `json:"address"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	addr, err := parseAddress("address", params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	native, err := s.node.Bank().NativeBalance(addr)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	emission, err := s.node.Bank().EmissionBalance(addr)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{
		"address":  params.Address,
		"native":   native.String(),
		"emission": emission.String(),
	})
}

func (s *Server) handleBankFundTranche(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Year   int    `json:"year"`
		Amount string `json:"amount"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	amount, err := parseAmount("amount", params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.Bank().FundTranche(params.Year, amount); err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"funded": true})
}

func (s *Server) handleTotemsSetToken(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Totem string `json:"totem"`
		Token string `json:"token"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	totem, err := parseAddress("totem", params.Totem)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	token, err := parseAddress("token", params.Token)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.Totems().SetToken(totem, token); err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"updated": true})
}
