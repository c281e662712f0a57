package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/impulso-music/impulso/internal/platform/errors"
	"github.com/impulso-music/impulso/internal/services/campaign/domain/track"
	"github.com/impulso-music/impulso/internal/services/campaign/service"
)

type handlers struct {
	svc *service.Service
}

func (h *handlers) startWizard(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Platform string `json:"platform"`
	}
	if r.ContentLength != 0 {
		if err := decodeBody(r, &body); err != nil {
			writeError(w, err)
			return
		}
	}

	session, err := h.svc.StartWizard(r.Context(), userID(r.Context()), body.Platform)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newWizardView(session))
}

func (h *handlers) getWizard(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.GetWizard(r.Context(), userID(r.Context()), chi.URLParam(r, "wizardID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newWizardView(session))
}

func (h *handlers) selectTrack(w http.ResponseWriter, r *http.Request) {
	var payload track.Payload
	if err := decodeBody(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.svc.SelectTrack(r.Context(), userID(r.Context()), chi.URLParam(r, "wizardID"), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newWizardView(session))
}

func (h *handlers) updateTargeting(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Genre       *string  `json:"genre"`
		Language    *string  `json:"language"`
		AddMoods    []string `json:"add_moods"`
		RemoveMoods []string `json:"remove_moods"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.svc.UpdateTargeting(r.Context(), userID(r.Context()), chi.URLParam(r, "wizardID"), service.TargetingUpdate{
		Genre:       body.Genre,
		Language:    body.Language,
		AddMoods:    body.AddMoods,
		RemoveMoods: body.RemoveMoods,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newWizardView(session))
}

func (h *handlers) setBudget(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount string `json:"amount"`
		Preset bool   `json:"preset"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.svc.SetBudget(r.Context(), userID(r.Context()), chi.URLParam(r, "wizardID"), body.Amount, body.Preset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newWizardView(session))
}

func (h *handlers) setObservation(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.svc.SetObservation(r.Context(), userID(r.Context()), chi.URLParam(r, "wizardID"), body.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newWizardView(session))
}

func (h *handlers) advance(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.Advance(r.Context(), userID(r.Context()), chi.URLParam(r, "wizardID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newWizardView(session))
}

func (h *handlers) retreat(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.Retreat(r.Context(), userID(r.Context()), chi.URLParam(r, "wizardID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newWizardView(session))
}

func (h *handlers) goToStep(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Step int `json:"step"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	session, err := h.svc.GoToStep(r.Context(), userID(r.Context()), chi.URLParam(r, "wizardID"), body.Step)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newWizardView(session))
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.ResetWizard(r.Context(), userID(r.Context()), chi.URLParam(r, "wizardID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newWizardView(session))
}

func (h *handlers) quote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.svc.Quote(r.Context(), userID(r.Context()), chi.URLParam(r, "wizardID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPricingView(quote))
}

func (h *handlers) verifyCoupon(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code string `json:"code"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.svc.VerifyCoupon(r.Context(), userID(r.Context()), chi.URLParam(r, "wizardID"), body.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Applied bool        `json:"applied"`
		Reason  string      `json:"reason,omitempty"`
		Quote   pricingView `json:"quote"`
	}{Applied: result.Applied, Reason: result.Reason, Quote: newPricingView(result.Quote)})
}

func (h *handlers) removeCoupon(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.RemoveCoupon(r.Context(), userID(r.Context()), chi.URLParam(r, "wizardID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newWizardView(session))
}

func (h *handlers) startCheckout(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.StartCheckout(r.Context(), userID(r.Context()), chi.URLParam(r, "wizardID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newCheckoutView(session))
}

func (h *handlers) getCheckout(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.GetCheckout(r.Context(), userID(r.Context()), chi.URLParam(r, "checkoutID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCheckoutView(session))
}

func (h *handlers) confirmPayment(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.ConfirmPayment(r.Context(), userID(r.Context()), chi.URLParam(r, "checkoutID"))
	if err != nil {
		// An unverified payment is a live session state, not a failure page;
		// return the session alongside the conflict status.
		if apperrors.CodeOf(err) == apperrors.CodeCheckoutUnverified {
			writeJSON(w, http.StatusConflict, newCheckoutView(session))
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCheckoutView(session))
}

func (h *handlers) abandonCheckout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.AbandonCheckout(r.Context(), userID(r.Context()), chi.URLParam(r, "checkoutID")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (h *handlers) listCampaigns(w http.ResponseWriter, r *http.Request) {
	records, err := h.svc.ListCampaigns(r.Context(), userID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]campaignView, 0, len(records))
	for _, record := range records {
		views = append(views, newCampaignView(record))
	}
	writeJSON(w, http.StatusOK, struct {
		Campaigns []campaignView `json:"campaigns"`
		Total     int            `json:"total"`
	}{Campaigns: views, Total: len(views)})
}

func (h *handlers) getCampaign(w http.ResponseWriter, r *http.Request) {
	record, err := h.svc.GetCampaign(r.Context(), userID(r.Context()), chi.URLParam(r, "campaignID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newCampaignView(record))
}
