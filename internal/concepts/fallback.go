package concepts

import (
	"fmt"
	"strings"
)

// Fallback returns the static concept table for a topic. Five known
// topics carry a full five-tier table; anything else gets a generic
// three-tier progression. Used whenever the LLM list is unavailable
// or malformed.
func Fallback(topic string) []Concept {
	switch strings.ToLower(topic) {
	case "algebra":
		return []Concept{
			{Name: "Basic Operations", Description: "Addition, subtraction, multiplication, division.", BaseDifficulty: 1},
			{Name: "Solving Linear Equations", Description: "Equations with one variable.", BaseDifficulty: 2},
			{Name: "Factoring Simple Polynomials", Description: "Factoring expressions like x^2 + bx + c.", BaseDifficulty: 3},
			{Name: "Systems of Two Equations", Description: "Solving two linear equations simultaneously.", BaseDifficulty: 4},
			{Name: "Quadratic Equations", Description: "Solving equations of the form ax^2 + bx + c = 0.", BaseDifficulty: 5},
		}
	case "calculus":
		return []Concept{
			{Name: "Limits", Description: "Understanding limits of functions.", BaseDifficulty: 1},
			{Name: "Basic Derivatives", Description: "Derivatives of simple power functions.", BaseDifficulty: 2},
			{Name: "Chain Rule", Description: "Applying the chain rule for derivatives.", BaseDifficulty: 3},
			{Name: "Basic Integrals", Description: "Indefinite integrals of simple functions.", BaseDifficulty: 4},
			{Name: "Definite Integrals", Description: "Calculating definite integrals.", BaseDifficulty: 5},
		}
	case "geometry":
		return []Concept{
			{Name: "Basic Shapes & Area", Description: "Area of squares, rectangles, triangles.", BaseDifficulty: 1},
			{Name: "Perimeter & Circumference", Description: "Calculating perimeter of polygons and circumference of circles.", BaseDifficulty: 2},
			{Name: "Angles & Lines", Description: "Properties of parallel lines, transversals, and angles.", BaseDifficulty: 3},
			{Name: "Pythagorean Theorem", Description: "Applying the theorem to right triangles.", BaseDifficulty: 4},
			{Name: "Volume of 3D Shapes", Description: "Calculating volume of prisms, cylinders, spheres.", BaseDifficulty: 5},
		}
	case "statistics":
		return []Concept{
			{Name: "Mean, Median, Mode", Description: "Calculating measures of central tendency.", BaseDifficulty: 1},
			{Name: "Range & Variance", Description: "Understanding measures of spread.", BaseDifficulty: 2},
			{Name: "Probability of Events", Description: "Calculating simple probabilities.", BaseDifficulty: 3},
			{Name: "Normal Distribution Basics", Description: "Understanding the normal curve and standard deviation.", BaseDifficulty: 4},
			{Name: "Correlation & Regression", Description: "Basic concepts of relationships between variables.", BaseDifficulty: 5},
		}
	case "basic arithmetic":
		return []Concept{
			{Name: "Addition & Subtraction", Description: "Operations with whole numbers.", BaseDifficulty: 1},
			{Name: "Multiplication & Division", Description: "Operations with whole numbers.", BaseDifficulty: 2},
			{Name: "Fractions & Decimals", Description: "Basic operations and conversions.", BaseDifficulty: 3},
			{Name: "Percentages", Description: "Calculating percentages and finding parts of a whole.", BaseDifficulty: 4},
			{Name: "Order of Operations (PEMDAS)", Description: "Solving multi-step expressions correctly.", BaseDifficulty: 5},
		}
	default:
		return []Concept{
			{Name: fmt.Sprintf("%s Basics", topic), Description: fmt.Sprintf("Fundamental concepts in %s.", topic), BaseDifficulty: 1},
			{Name: fmt.Sprintf("%s Intermediate", topic), Description: fmt.Sprintf("Intermediate problems in %s.", topic), BaseDifficulty: 3},
			{Name: fmt.Sprintf("%s Advanced", topic), Description: fmt.Sprintf("Complex problems in %s.", topic), BaseDifficulty: 5},
		}
	}
}
