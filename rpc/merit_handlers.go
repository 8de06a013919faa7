package rpc

import (
	"errors"
	"net/http"

	"totemic/native/merit"
	"totemic/registry"
)

func rpcCodeForError(err error) int {
	switch {
	case errors.Is(err, merit.ErrUnauthorized):
		return codeUnauthorized
	case errors.Is(err, registry.ErrEcosystemPaused), errors.Is(err, registry.ErrTotemsPaused):
		return codeServerError
	default:
		return codeServerError
	}
}

func (s *Server) writeEngineError(w http.ResponseWriter, id interface{}, err error) {
	writeError(w, http.StatusOK, id, rpcCodeForError(err), err.Error(), nil)
}

type addressedParams struct {
	Caller string `json:"caller"`
	Totem  string `json:"totem"`
}

func (p addressedParams) decode() (caller, totem [20]byte, err error) {
	if caller, err = parseAddress("caller", p.Caller); err != nil {
		return
	}
	totem, err = parseAddress("totem", p.Totem)
	return
}

func (s *Server) handleMeritRegister(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params addressedParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, totem, err := params.decode()
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.Merit().Register(caller, totem); err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"registered": true})
}

func (s *Server) handleMeritCredit(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		addressedParams
		Amount string `json:"amount"`
		Source string `json:"source"`
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
	amount, err := parseAmount("amount", params.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	source := params.Source
	if source == "" {
		source = merit.SourceAdmin
	}
	if err := s.node.Merit().CreditMerit(caller, totem, amount, source); err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"credited": amount.String()})
}

func (s *Server) handleMeritBoostTotem(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
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
	if err := s.node.Merit().BoostTotem(caller, totem, payment); err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"boosted": true})
}

func (s *Server) handleMeritClaim(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		addressedParams
		Period uint64 `json:"period"`
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
	payout, err := s.node.Merit().Claim(caller, totem, params.Period)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"payout": payout.String()})
}

func (s *Server) handleMeritSettleEmission(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	if err := s.node.Merit().SettleEmission(); err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"settled": true})
}

type periodInfoResult struct {
	Period        uint64 `json:"period"`
	Start         int64  `json:"start"`
	End           int64  `json:"end"`
	Mythum        bool   `json:"mythum"`
	MultiplierBps uint32 `json:"multiplierBps"`
}

func (s *Server) handleMeritPeriodInfo(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	info := s.node.Merit().PeriodInfo()
	writeResult(w, req.ID, periodInfoResult{
		Period:        info.Period,
		Start:         info.Start.Unix(),
		End:           info.End.Unix(),
		Mythum:        info.Mythum,
		MultiplierBps: info.MultiplierBps,
	})
}

func (s *Server) handleMeritPeriodBounds(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Period uint64 `json:"period"`
	}
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	start, end, ok := s.node.Merit().PeriodBounds(params.Period)
	if !ok {
		writeResult(w, req.ID, map[string]bool{"known": false})
		return
	}
	writeResult(w, req.ID, map[string]interface{}{
		"known": true,
		"start": start.Unix(),
		"end":   end.Unix(),
	})
}

func (s *Server) handleMeritPendingReward(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Totem  string `json:"totem"`
		Period uint64 `json:"period"`
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
	pending, err := s.node.Merit().PendingReward(totem, params.Period)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{"pending": pending.String()})
}

func (s *Server) handleMeritPoints(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Totem  string `json:"totem"`
		Period uint64 `json:"period"`
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
	points, err := s.node.Merit().Points(totem, params.Period)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	total, err := s.node.Merit().PeriodPoints(params.Period)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]string{
		"points":      points.String(),
		"periodTotal": total.String(),
	})
}

type accountResult struct {
	Address     string `json:"address"`
	Registered  bool   `json:"registered"`
	Blacklisted bool   `json:"blacklisted"`
	Karma       uint64 `json:"karma"`
}

func (s *Server) handleMeritAccount(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Totem string `json:"totem"`
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
	acct, err := s.node.Merit().Account(totem)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	result := accountResult{Address: params.Totem}
	if acct != nil {
		result.Registered = acct.Registered
		result.Blacklisted = acct.Blacklisted
		result.Karma = acct.Karma
	}
	writeResult(w, req.ID, result)
}

func (s *Server) handleMeritTotems(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	params := struct {
		Offset int `json:"offset"`
		Limit  int `json:"limit"`
	}{Limit: 100}
	if len(req.Params) > 0 {
		if err := decodeParams(req, &params); err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
			return
		}
	}
	totems, err := s.node.Merit().Totems(params.Offset, params.Limit)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	encoded := make([]string, 0, len(totems))
	for _, totem := range totems {
		encoded = append(encoded, encodeAddress(totem))
	}
	writeResult(w, req.ID, map[string]interface{}{"totems": encoded})
}

type meritParamsResult struct {
	PeriodSeconds       uint64 `json:"periodSeconds"`
	PeriodsPerYear      uint64 `json:"periodsPerYear"`
	MythumWindowSeconds uint64 `json:"mythumWindowSeconds"`
	MythumMultiplierBps uint32 `json:"mythumMultiplierBps"`
	BoostFee            string `json:"boostFee"`
	BoostPoints         string `json:"boostPoints"`
}

func (s *Server) handleMeritParams(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	params := s.node.Merit().Params()
	writeResult(w, req.ID, meritParamsResult{
		PeriodSeconds:       params.PeriodSeconds,
		PeriodsPerYear:      params.PeriodsPerYear,
		MythumWindowSeconds: params.MythumWindowSeconds,
		MythumMultiplierBps: params.MythumMultiplierBps,
		BoostFee:            params.BoostFee.String(),
		BoostPoints:         params.BoostPoints.String(),
	})
}

func (s *Server) handleMeritSetBoostFee(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Caller string `json:"caller"`
		Fee    string `json:"fee"`
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
	fee, err := parseAmount("fee", params.Fee)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.Merit().SetBoostFee(caller, fee); err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"updated": true})
}

func (s *Server) handleMeritSetBoostPoints(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Caller string `json:"caller"`
		Points string `json:"points"`
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
	points, err := parseAmount("points", params.Points)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.Merit().SetBoostPoints(caller, points); err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"updated": true})
}

func (s *Server) handleMeritSetMythumMultiplier(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Caller string `json:"caller"`
		Bps    uint32 `json:"bps"`
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
	if err := s.node.Merit().SetMythumMultiplier(caller, params.Bps); err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"updated": true})
}

func (s *Server) handleMeritSetPeriodDuration(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		Caller  string `json:"caller"`
		Seconds uint64 `json:"seconds"`
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
	if err := s.node.Merit().SetPeriodDuration(caller, params.Seconds); err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"updated": true})
}

func (s *Server) handleMeritSetBlacklist(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		addressedParams
		Blacklisted bool `json:"blacklisted"`
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
	if err := s.node.Merit().SetBlacklist(caller, totem, params.Blacklisted); err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"updated": true})
}

func (s *Server) handleMeritAdjustKarma(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params struct {
		addressedParams
		Delta int64 `json:"delta"`
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
	karma, err := s.node.Merit().AdjustKarma(caller, totem, params.Delta)
	if err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]uint64{"karma": karma})
}

type roleParams struct {
	Caller  string `json:"caller"`
	Role    string `json:"role"`
	Subject string `json:"subject"`
}

func (p roleParams) decode() (caller, subject [20]byte, err error) {
	if caller, err = parseAddress("caller", p.Caller); err != nil {
		return
	}
	subject, err = parseAddress("subject", p.Subject)
	return
}

func (s *Server) handleMeritGrantRole(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params roleParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, subject, err := params.decode()
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.Merit().GrantRole(caller, params.Role, subject); err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"granted": true})
}

func (s *Server) handleMeritRevokeRole(w http.ResponseWriter, _ *http.Request, req *RPCRequest) {
	var params roleParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, subject, err := params.decode()
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.node.Merit().RevokeRole(caller, params.Role, subject); err != nil {
		s.writeEngineError(w, req.ID, err)
		return
	}
	writeResult(w, req.ID, map[string]bool{"revoked": true})
}
