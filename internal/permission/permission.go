// Package permission resolves "can user U (role R) perform action A on
// documents of type T at site S". Resolution order: per-user override
// (authoritative when defined) → per-site role table (when non-empty) →
// hard-coded defaults. Evaluation is pure.
package permission

import "github.com/sitewalk/submittalflow/internal/models"

type key struct {
	DocType models.DocumentType
	Action  models.Action
}

// defaultRoles is the fallback table consulted when a site configures
// nothing for (documentType, action).
var defaultRoles = map[key][]models.Role{
	// RFA creation is gated per subtype.
	{models.DocTypeRFAGeneral, models.ActionCreate}:     {models.RoleSite, models.RoleBIM},
	{models.DocTypeRFAShopDrawing, models.ActionCreate}: {models.RoleBIM},

	{models.DocTypeRFAGeneral, models.ActionSendToCM}:        {models.RoleAdmin, models.RolePM},
	{models.DocTypeRFAGeneral, models.ActionRequestRevision}: {models.RoleAdmin, models.RolePM},
	{models.DocTypeRFAGeneral, models.ActionSubmitRevision}:  {models.RoleSite, models.RoleBIM},
	{models.DocTypeRFAGeneral, models.ActionApprove}:         {models.RoleCM, models.RoleAdmin, models.RolePM},
	{models.DocTypeRFAGeneral, models.ActionApproveWithComments}:     {models.RoleCM, models.RoleAdmin, models.RolePM},
	{models.DocTypeRFAGeneral, models.ActionApproveRevisionRequired}: {models.RoleAdmin, models.RolePM},
	{models.DocTypeRFAGeneral, models.ActionReject}:                  {models.RoleCM, models.RoleAdmin, models.RolePM},

	{models.DocTypeWorkRequest, models.ActionCreate}:         {models.RoleSite, models.RoleAdmin},
	{models.DocTypeWorkRequest, models.ActionApproveRequest}: {models.RolePM, models.RoleAdmin},
	{models.DocTypeWorkRequest, models.ActionRejectRequest}:  {models.RolePM, models.RoleAdmin},
	{models.DocTypeWorkRequest, models.ActionAssign}:         {models.RoleBIM, models.RoleAdmin},
	{models.DocTypeWorkRequest, models.ActionSubmitWork}:     {models.RoleBIM},
	{models.DocTypeWorkRequest, models.ActionAcceptWork}:     {models.RoleSite, models.RoleAdmin},
	{models.DocTypeWorkRequest, models.ActionRequestRework}:  {models.RoleSite, models.RoleAdmin},
	{models.DocTypeWorkRequest, models.ActionResubmitWork}:   {models.RoleBIM},
	{models.DocTypeWorkRequest, models.ActionSubmitRevision}: {models.RoleBIM},
}

func init() {
	// Both RFA subtypes share the workflow action defaults; only
	// creation differs. Mirror the general table for shop drawings.
	mirrored := make(map[key][]models.Role)
	for k, v := range defaultRoles {
		if k.DocType == models.DocTypeRFAGeneral && k.Action != models.ActionCreate {
			mirrored[key{models.DocTypeRFAShopDrawing, k.Action}] = v
		}
	}
	for k, v := range mirrored {
		defaultRoles[k] = v
	}
}

// CanPerform evaluates the gate for one (user, role, action) triple.
// A nil site falls straight through to the defaults.
func CanPerform(site *models.Site, userID string, role models.Role, docType models.DocumentType, action models.Action) bool {
	if v, ok := site.OverrideFor(userID, docType, action); ok {
		return v
	}
	if roles := site.RolesFor(docType, action); len(roles) > 0 {
		return containsRole(roles, role)
	}
	return containsRole(defaultRoles[key{docType, action}], role)
}

// CanSubmitRevision applies the creator restriction on top of the gate:
// only the original creator, acting in a creator role, may spawn a
// revision of their own document.
func CanSubmitRevision(site *models.Site, userID string, role models.Role, doc *models.Document) bool {
	if doc.CreatedBy != userID {
		return false
	}
	return CanPerform(site, userID, role, doc.DocumentType, models.ActionSubmitRevision)
}

func containsRole(roles []models.Role, role models.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
