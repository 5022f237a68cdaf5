package models

type BookBorrowCount struct {
	BookID string `json:"bookId"`
	Title  string `json:"title"`
	Author string `json:"author"`
	Count  int64  `json:"count"`
}

type ActiveMember struct {
	UserID      string `json:"memberId"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	BorrowCount int64  `json:"borrowCount"`
}

type AvailabilitySummary struct {
	TotalBooks     int64 `json:"totalBooks"`
	TotalAvailable int64 `json:"totalAvailable"`
	TotalBorrowed  int64 `json:"totalBorrowed"`
	TotalTitles    int64 `json:"totalTitles"`
}
