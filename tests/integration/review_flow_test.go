package integration

import "testing"

// TestRatingRecomputedOnReviewChanges verifies the aggregate arithmetic:
// ratings [4, 5, 3] average to 4.0 over 3, deleting the 3 leaves 4.5 over 2,
// and deleting everything yields the zero rating rather than an error.
func TestRatingRecomputedOnReviewChanges(t *testing.T) {
	skipIfNotRunning(t)

	_, slug := createProduct(t, "Rated Widget", 500, 10)
	reviewsURL := baseURL() + "/api/v1/products/" + slug + "/reviews"
	ratingURL := baseURL() + "/api/v1/products/" + slug + "/rating"

	reviewers := make([]string, 3)
	reviewIDs := make([]string, 3)
	for i, rating := range []int{4, 5, 3} {
		reviewers[i] = createUser(t, "reviewer")
		status, data := httpPost(t, reviewsURL,
			map[string]interface{}{"rating": rating, "comment": "integration"},
			asUser(reviewers[i]))
		requireStatus(t, status, 201)

		id, _ := extractField(data, "data.id").(string)
		if id == "" {
			t.Fatal("expected data.id in create review response")
		}
		reviewIDs[i] = id
	}

	status, data := httpGet(t, ratingURL, nil)
	requireStatus(t, status, 200)
	requireNumber(t, data, "data.average_rating", 4.0)
	requireNumber(t, data, "data.total_ratings", 3)

	// Drop the 3-star review; (4+5)/2 = 4.5.
	status, _ = httpDelete(t, baseURL()+"/api/v1/reviews/"+reviewIDs[2], asUser(reviewers[2]))
	requireStatus(t, status, 204)

	status, data = httpGet(t, ratingURL, nil)
	requireStatus(t, status, 200)
	requireNumber(t, data, "data.average_rating", 4.5)
	requireNumber(t, data, "data.total_ratings", 2)

	// Remove the rest; a product without reviews reads as the zero rating.
	for i := 0; i < 2; i++ {
		status, _ = httpDelete(t, baseURL()+"/api/v1/reviews/"+reviewIDs[i], asUser(reviewers[i]))
		requireStatus(t, status, 204)
	}

	status, data = httpGet(t, ratingURL, nil)
	requireStatus(t, status, 200)
	requireNumber(t, data, "data.average_rating", 0)
	requireNumber(t, data, "data.total_ratings", 0)
}
