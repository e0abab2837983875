package user

type ApproverResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type ListApproversQuery struct {
	Role string `form:"role" binding:"required"`
}
