package dtos

// SignupRequest creates a student unless Role is "admin". Profile fields are ignored
// for admins.
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=student admin"`

	RollNumber  string  `json:"roll_number"`
	FullName    string  `json:"full_name"`
	Branch      string  `json:"branch"`
	CGPA        float64 `json:"cgpa" binding:"gte=0,lte=10"`
	Class10Perc float64 `json:"class_10_perc" binding:"gte=0,lte=100"`
	Class12Perc float64 `json:"class_12_perc" binding:"gte=0,lte=100"`
	Backlogs    int     `json:"backlogs" binding:"gte=0"`
	YearGap     int     `json:"year_gap" binding:"gte=0"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}
