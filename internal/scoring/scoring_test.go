package scoring_test

import (
	"math"
	"testing"

	"billingest/internal/model"
	"billingest/internal/scoring"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRandomFraudScorer(t *testing.T) {
	Convey("Given a seeded random fraud scorer", t, func() {
		scorer := scoring.NewRandomFraudScorer(scoring.WithSeed(42))

		Convey("Then 10000 samples all fall into [0, 1]", func() {
			for i := 0; i < 10000; i++ {
				s := scorer.FraudScore(model.BillRecord{})
				So(s, ShouldBeGreaterThanOrEqualTo, 0.0)
				So(s, ShouldBeLessThanOrEqualTo, 1.0)
			}
		})

		Convey("Then the same seed yields the same sequence", func() {
			other := scoring.NewRandomFraudScorer(scoring.WithSeed(42))
			again := scoring.NewRandomFraudScorer(scoring.WithSeed(42))
			for i := 0; i < 10; i++ {
				So(other.FraudScore(model.BillRecord{}), ShouldEqual, again.FraudScore(model.BillRecord{}))
			}
		})
	})
}

func TestRandomClassifier(t *testing.T) {
	Convey("Given a seeded random classifier", t, func() {
		classifier := scoring.NewRandomClassifier(scoring.WithSeed(7))

		Convey("Then every result is a known class with its exact label", func() {
			seen := map[int]bool{}
			for i := 0; i < 10000; i++ {
				c := classifier.Classify(model.BillRecord{})
				want, ok := scoring.LookupServiceClass(c.Code)
				So(ok, ShouldBeTrue)
				So(c.Name, ShouldEqual, want.Name)
				seen[c.Code] = true
			}
			So(len(seen), ShouldEqual, 5)
		})
	})
}

func TestServiceClassTable(t *testing.T) {
	Convey("The classification table is fixed", t, func() {
		want := map[int]string{
			1: "консультация",
			2: "лечение",
			3: "стационар",
			4: "диагностика",
			5: "лаборатория",
		}
		So(len(scoring.ServiceClasses), ShouldEqual, len(want))
		for code, name := range want {
			c, ok := scoring.LookupServiceClass(code)
			So(ok, ShouldBeTrue)
			So(c.Name, ShouldEqual, name)
		}
		_, ok := scoring.LookupServiceClass(6)
		So(ok, ShouldBeFalse)
	})
}

func TestKeywordClassifier(t *testing.T) {
	Convey("Given a keyword classifier with a fixed fallback", t, func() {
		fallback := scoring.ClassifierFunc(func(model.BillRecord) scoring.ServiceClass {
			return scoring.ServiceClasses[4]
		})
		classifier := scoring.NewKeywordClassifier(fallback)

		Convey("When the service text names a category", func() {
			So(classifier.Classify(model.BillRecord{Service: "Первичная консультация терапевта"}).Code, ShouldEqual, 1)
			So(classifier.Classify(model.BillRecord{Service: "УЗИ брюшной полости"}).Code, ShouldEqual, 4)
			So(classifier.Classify(model.BillRecord{Service: "Стационар, 3 дня"}).Code, ShouldEqual, 3)
		})

		Convey("When nothing matches the fallback decides", func() {
			So(classifier.Classify(model.BillRecord{Service: "прочее"}).Code, ShouldEqual, 5)
		})
	})
}

func TestEnricher(t *testing.T) {
	Convey("Given an enricher with stub strategies", t, func() {
		score := 0.0
		fraud := scoring.FraudScorerFunc(func(model.BillRecord) float64 { return score })
		class := scoring.ServiceClass{Code: 2, Name: "whatever"}
		classifier := scoring.ClassifierFunc(func(model.BillRecord) scoring.ServiceClass { return class })
		e := scoring.NewEnricher(fraud, classifier, 0)

		bill := model.BillRecord{ClientName: "Acme", Number: 1, Summ: 10, Service: "x"}

		Convey("Then the default threshold is 0.9", func() {
			So(e.Threshold(), ShouldEqual, scoring.DefaultFraudThreshold)
		})

		Convey("Then the bill fields are carried over and the label comes from the table", func() {
			score = 0.3
			out := e.Enrich(bill)
			So(out.BillRecord, ShouldResemble, bill)
			So(out.ServiceClass, ShouldEqual, 2)
			So(out.ServiceName, ShouldEqual, "лечение")
			So(out.Fraud, ShouldBeFalse)
		})

		Convey("Then a score at the threshold is flagged", func() {
			score = 0.9
			So(e.Enrich(bill).Fraud, ShouldBeTrue)
			score = 0.8999
			So(e.Enrich(bill).Fraud, ShouldBeFalse)
		})

		Convey("Then out of range scores are clamped", func() {
			score = 1.7
			So(e.Enrich(bill).FraudScore, ShouldEqual, 1.0)
			score = -3
			So(e.Enrich(bill).FraudScore, ShouldEqual, 0.0)
			score = math.NaN()
			So(e.Enrich(bill).FraudScore, ShouldEqual, 0.0)
		})

		Convey("Then an unknown class code maps to a known class", func() {
			class = scoring.ServiceClass{Code: 99, Name: "?"}
			out := e.Enrich(bill)
			_, ok := scoring.LookupServiceClass(out.ServiceClass)
			So(ok, ShouldBeTrue)
		})
	})
}
