package models

// LabTest is a catalog entry. Price is read at dispatch time to compute a
// request's totalAmount snapshot; later price edits never touch old requests.
type LabTest struct {
	ID       string  `json:"id" bson:"id"`
	TestName string  `json:"testName" bson:"testName"`
	Price    float64 `json:"price" bson:"price"`
	TestCode string  `json:"testCode" bson:"testCode"`
}
