package reviewer

import "fmt"

// GenerateReviewerID generates a reviewer ID from the current max number.
// The format is REV-XXX where XXX is a zero-padded 3-digit number.
func GenerateReviewerID(currentMax int) string {
	return fmt.Sprintf("REV-%03d", currentMax+1)
}

// ParseReviewerNumber extracts the numeric portion from a reviewer ID.
// Returns -1 if the ID format is invalid.
func ParseReviewerNumber(id string) int {
	var num int
	_, err := fmt.Sscanf(id, "REV-%d", &num)
	if err != nil {
		return -1
	}
	return num
}
