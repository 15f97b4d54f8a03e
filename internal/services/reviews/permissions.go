package reviews

import "moviecatalog/proj/internal/domain/models"

// CanUpdate reports whether principal may edit review. Only the author may.
func CanUpdate(principal *models.Principal, review *models.Review) bool {
	return principal != nil && principal.ID == review.UserID
}

// CanDelete reports whether principal may delete review. Admins moderate every review.
func CanDelete(principal *models.Principal, review *models.Review) bool {
	return principal != nil && (principal.IsAdmin() || principal.ID == review.UserID)
}
