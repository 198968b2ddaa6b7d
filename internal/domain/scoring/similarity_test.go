package scoring

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/feedrank/internal/domain/types"
)

// unitAt returns a 2D unit vector whose cosine against [1,0] is exactly cos.
func unitAt(cos float64) []float64 {
	return []float64{cos, math.Sqrt(1 - cos*cos)}
}

func TestCosineSimilarity(t *testing.T) {
	Convey("Given cosine similarity", t, func() {
		Convey("When vectors are identical", func() {
			So(CosineSimilarity([]float64{1, 2, 3}, []float64{1, 2, 3}), ShouldAlmostEqual, 1.0, 1e-9)
		})

		Convey("When vectors are parallel with different magnitudes", func() {
			So(CosineSimilarity([]float64{1, 2, 3}, []float64{2, 4, 6}), ShouldAlmostEqual, 1.0, 1e-9)
		})

		Convey("When vectors are orthogonal", func() {
			So(CosineSimilarity([]float64{1, 0}, []float64{0, 1}), ShouldAlmostEqual, 0.0, 1e-9)
		})

		Convey("When vectors are opposed", func() {
			So(CosineSimilarity([]float64{1, 0}, []float64{-1, 0}), ShouldAlmostEqual, -1.0, 1e-9)
		})

		Convey("When lengths mismatch", func() {
			So(CosineSimilarity([]float64{1, 0}, []float64{1, 0, 0}), ShouldEqual, 0)
		})

		Convey("When a vector is all zeros", func() {
			So(CosineSimilarity([]float64{0, 0}, []float64{1, 0}), ShouldEqual, 0)
		})
	})
}

func TestPersonalizerScore(t *testing.T) {
	Convey("Given a personalizer with default thresholds", t, func() {
		p := NewPersonalizer()
		embedding := []float64{1, 0}

		Convey("When the embedding is missing", func() {
			_, err := p.Score(nil, []float64{1, 0}, nil)

			Convey("Then it should report the missing embedding", func() {
				So(err, ShouldEqual, ErrNoEmbedding)
			})
		})

		Convey("When the positive centroid is missing", func() {
			_, err := p.Score(embedding, nil, nil)

			Convey("Then it should report the missing centroid", func() {
				So(err, ShouldEqual, ErrNoPositiveCentroid)
			})
		})

		Convey("When similarity to likes is high and to hides is low", func() {
			score, err := p.Score(embedding, unitAt(0.9), unitAt(0.1))

			Convey("Then the score should land in the great tier", func() {
				So(err, ShouldBeNil)
				So(score, ShouldAlmostEqual, 0.9, 1e-9)
				So(p.Include(score), ShouldBeTrue)
				So(p.Tier(score), ShouldEqual, types.TierGreat)
			})
		})

		Convey("When similarity barely clears the cutoff", func() {
			score, err := p.Score(embedding, unitAt(0.45), unitAt(0.35))

			Convey("Then the event is included without a badge", func() {
				So(err, ShouldBeNil)
				So(score, ShouldAlmostEqual, 0.55, 1e-9)
				So(p.Include(score), ShouldBeTrue)
				So(p.Tier(score), ShouldEqual, types.TierNone)
			})
		})

		Convey("When the embedding leans toward the negative centroid", func() {
			score, err := p.Score(embedding, unitAt(-0.2), unitAt(0.2))

			Convey("Then the score should land on the cutoff and be excluded", func() {
				So(err, ShouldBeNil)
				So(score, ShouldAlmostEqual, 0.3, 1e-9)
				So(p.Include(score), ShouldBeFalse)
			})
		})

		Convey("When there is no negative centroid", func() {
			score, err := p.Score(embedding, unitAt(0.5), nil)

			Convey("Then opposition should be treated as zero", func() {
				So(err, ShouldBeNil)
				So(score, ShouldAlmostEqual, 0.75, 1e-9)
			})
		})

		Convey("When the raw mapping would leave [0,1]", func() {
			low, errLow := p.Score(embedding, unitAt(-1), unitAt(1))
			high, errHigh := p.Score(embedding, unitAt(1), unitAt(-1))

			Convey("Then scores should clamp to the unit interval", func() {
				So(errLow, ShouldBeNil)
				So(errHigh, ShouldBeNil)
				So(low, ShouldEqual, 0.0)
				So(high, ShouldEqual, 1.0)
			})
		})

		Convey("When scores sit exactly on tier thresholds", func() {
			So(p.Tier(0.75), ShouldEqual, types.TierGreat)
			So(p.Tier(0.5), ShouldEqual, types.TierGood)
			So(p.Tier(0.4999), ShouldEqual, types.TierNone)
		})
	})
}

func TestPersonalizerOptions(t *testing.T) {
	Convey("Given personalizer options", t, func() {
		Convey("When a custom cutoff and thresholds are set", func() {
			p := NewPersonalizer(
				WithInclusionCutoff(0.4),
				WithTierThresholds(0.6, 0.8),
			)

			Convey("Then inclusion and tiers should follow the custom values", func() {
				So(p.Include(0.4), ShouldBeFalse)
				So(p.Include(0.41), ShouldBeTrue)
				So(p.Tier(0.79), ShouldEqual, types.TierGood)
				So(p.Tier(0.8), ShouldEqual, types.TierGreat)
			})
		})

		Convey("When invalid option values are supplied", func() {
			p := NewPersonalizer(
				WithInclusionCutoff(1.5),
				WithTierThresholds(0.8, 0.6),
			)

			Convey("Then defaults should be retained", func() {
				So(p.Include(0.3), ShouldBeFalse)
				So(p.Include(0.31), ShouldBeTrue)
				So(p.Tier(0.75), ShouldEqual, types.TierGreat)
			})
		})
	})
}
