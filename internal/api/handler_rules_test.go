package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leo-o93/sorrija-crm-odontologico-sub001/internal/model"
)

func TestCreateRule(t *testing.T) {
	router, db := setupRouter(t)

	body := `{
		"name": "cooldown",
		"priority": 1,
		"trigger_event": "inactivity_timer",
		"from_temperature": "quente",
		"timer_minutes": 60,
		"action_set_temperature": "frio"
	}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/organizations/org-1/rules", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var created model.TransitionRule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Active, "rules default to active")
	assert.Equal(t, "org-1", created.OrganizationID)

	var count int64
	require.NoError(t, db.Model(&model.TransitionRule{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCreateRule_Validation(t *testing.T) {
	router, _ := setupRouter(t)

	cases := []struct {
		name string
		body string
	}{
		{"unknown trigger", `{"name":"x","trigger_event":"full_moon"}`},
		{"unknown from_temperature", `{"name":"x","trigger_event":"inactivity_timer","from_temperature":"tibio"}`},
		{"unknown action temperature", `{"name":"x","trigger_event":"inactivity_timer","action_set_temperature":"tibio"}`},
		{"clear and set substatus together", `{"name":"x","trigger_event":"inactivity_timer","action_clear_substatus":true,"action_set_substatus":"em_conversa"}`},
		{"negative timer", `{"name":"x","trigger_event":"inactivity_timer","timer_minutes":-5}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", "/api/organizations/org-1/rules", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestListRules_OrderedByPriority(t *testing.T) {
	router, db := setupRouter(t)

	require.NoError(t, db.Create(&model.TransitionRule{
		ID: "r2", OrganizationID: "org-1", Name: "second", Priority: 2, Active: true,
		TriggerEvent: model.TriggerInactivityTimer,
	}).Error)
	require.NoError(t, db.Create(&model.TransitionRule{
		ID: "r1", OrganizationID: "org-1", Name: "first", Priority: 1, Active: true,
		TriggerEvent: model.TriggerInactivityTimer,
	}).Error)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/organizations/org-1/rules", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var rules []model.TransitionRule
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rules))
	require.Len(t, rules, 2)
	assert.Equal(t, "first", rules[0].Name)
	assert.Equal(t, "second", rules[1].Name)
}
