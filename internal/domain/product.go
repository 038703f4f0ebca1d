package domain

import "time"

// Product represents a listing offered by a producer.
type Product struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Price          float64    `json:"price"`
	Unit           string     `json:"unit"`
	Category       string     `json:"category"`
	Location       string     `json:"location"`
	SellerID       string     `json:"seller_id"`
	SellerName     string     `json:"seller_name"`
	ImageURL       string     `json:"image_url"`
	Organic        bool       `json:"organic"`
	HarvestDate    string     `json:"harvest_date"`
	ExpirationDate *string    `json:"expiration_date,omitempty"`
	MaxQuantity    int        `json:"max_quantity"`
	Rating         float64    `json:"rating"`
	ReviewCount    int        `json:"review_count"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// RatingAggregate holds the two mutable aggregate fields on a product.
// Rating is the weighted mean of all rating inputs applied so far and
// ReviewCount the number of inputs that produced it.
type RatingAggregate struct {
	Rating      float64 `json:"rating"`
	ReviewCount int     `json:"review_count"`
}

// ApplyIncremental folds one more rating into the aggregate, treating the
// stored values as an already-valid weighted sum. It never consults the
// review set, so it can carry contributions that reviews alone would not.
func (a RatingAggregate) ApplyIncremental(rating int) RatingAggregate {
	count := a.ReviewCount + 1
	return RatingAggregate{
		Rating:      (a.Rating*float64(a.ReviewCount) + float64(rating)) / float64(count),
		ReviewCount: count,
	}
}

// RecomputeFromRatings derives the aggregate purely from the given review
// ratings, discarding whatever the stored aggregate held before. With no
// ratings the aggregate resets to zero.
func RecomputeFromRatings(ratings []int) RatingAggregate {
	if len(ratings) == 0 {
		return RatingAggregate{}
	}
	var sum int
	for _, r := range ratings {
		sum += r
	}
	return RatingAggregate{
		Rating:      float64(sum) / float64(len(ratings)),
		ReviewCount: len(ratings),
	}
}

// IsValidRating reports whether a rating value is inside the accepted [1,5] range.
func IsValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}
