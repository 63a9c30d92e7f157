package exemplar

import (
	"fmt"

	"github.com/agenthands/upsampler/internal/core/model"
)

// Bank is the fixed, ordered set of few-shot exemplars. It is read-only after construction.
type Bank struct {
	exemplars []model.Exemplar
}

// NewBank copies exemplars into a bank, rejecting empty entries.
func NewBank(exemplars []model.Exemplar) (*Bank, error) {
	if len(exemplars) == 0 {
		return nil, fmt.Errorf("exemplar bank is empty")
	}
	owned := make([]model.Exemplar, len(exemplars))
	for i, e := range exemplars {
		if e.Rationale == "" || e.Caption == "" {
			return nil, fmt.Errorf("exemplar %d: rationale and caption are required", i)
		}
		owned[i] = e
	}
	return &Bank{exemplars: owned}, nil
}

// DefaultBank returns the built-in exemplars.
func DefaultBank() *Bank {
	b, _ := NewBank(defaultExemplars)
	return b
}

// Len is the number of exemplars in the bank.
func (b *Bank) Len() int {
	return len(b.exemplars)
}

// Take returns a copy of the first m exemplars, where m is the configured fan-out.
func (b *Bank) Take(m int) ([]model.Exemplar, error) {
	if m <= 0 || m > len(b.exemplars) {
		return nil, fmt.Errorf("%w: %d (bank holds %d exemplars)", model.ErrInvalidFanOut, m, len(b.exemplars))
	}
	out := make([]model.Exemplar, m)
	copy(out, b.exemplars[:m])
	return out, nil
}

// All returns a copy of every exemplar.
func (b *Bank) All() []model.Exemplar {
	out, _ := b.Take(len(b.exemplars))
	return out
}

var defaultExemplars = []model.Exemplar{
	{
		Rationale: "a man holding a sword",
		Caption:   "a pale figure with long white hair stands in the center of a dark forest, holding a sword high above his head.",
	},
	{
		Rationale: "a frog playing dominoes",
		Caption:   "a frog sits on a worn table playing a game of dominoes with an elderly raccoon. the table is covered in a green cloth, and the frog is wearing a jacket and a pair of jeans. The scene is set in a forest, with a large tree in the background.",
	},
	{
		Rationale: "A bird scaring a scarecrow",
		Caption:   "A large, vibrant bird with an impressive wingspan swoops down from the sky, letting out a piercing call as it approaches a weathered scarecrow in a sunlit field. The scarecrow, dressed in tattered clothing and a straw hat, appears to tremble, almost as if it's coming to life in fear of the approaching bird.",
	},
	{
		Rationale: "Paying for a quarter-sized pizza with a pizza-sized quarter",
		Caption:   "A person is standing at a pizza counter, holding a gigantic quarter the size of a pizza. The cashier, wide-eyed with astonishment, hands over a tiny, quartersized pizza in return. The background features various pizza toppings and other customers, all of them equally amazed by the unusual transaction.",
	},
	{
		Rationale: "a quilt with an iron on it",
		Caption:   "a quilt is laid out on a ironing board with an iron resting on top. the quilt has a patchwork design with pastel-colored strips of fabric and floral patterns. the iron is turned on and the tip is resting on top of one of the strips. the quilt appears to be in the process of being pressed, as the steam from the iron is visible on the surface. the quilt has a vintage feel and the colors are yellow, blue, and white, giving it an antique look.",
	},
	{
		Rationale: "a furry humanoid skunk",
		Caption:   "In a fantastical setting, a highly detailed furry humanoid skunk with piercing eyes confidently poses in a medium shot, wearing an animal hide jacket. The artist has masterfully rendered the character in digital art, capturing the intricate details of fur and clothing texture.",
	},
	{
		Rationale: "An icy landscape under a starlit sky",
		Caption:   "An icy landscape under a starlit sky, where a magnificent frozen waterfall flows over a cliff. In the center of the scene, a fire burns bright, its flames seemingly frozen in place, casting a shimmering glow on the surrounding ice and snow.",
	},
	{
		Rationale: "A fierce garden gnome warrior",
		Caption:   "A fierce garden gnome warrior, clad in armor crafted from leaves and bark, brandishes a tiny sword and shield. He stands valiantly on a rock amidst a blooming garden, surrounded by colorful flowers and towering plants. A determined expression is painted on his face, ready to defend his garden kingdom.",
	},
	{
		Rationale: "A ferret in a candy jar",
		Caption:   "A mischievous ferret with a playful grin squeezes itself into a large glass jar, surrounded by colorful candy. The jar sits on a wooden table in a cozy kitchen, and warm sunlight filters through a nearby window.",
	},
	{
		Rationale: "cartoon drawing of an astronaut riding a horse",
		Caption:   "Cartoon drawing of an outer space scene. Amidst floating planets and twinkling stars, a whimsical horse with exaggerated features rides an astronaut, who swims through space with a jetpack, looking a tad overwhelmed.",
	},
	{
		// Misspelled on purpose: shows the model to fix the prompt before elaborating.
		Rationale: "A smafml vessef epropoeilled on watvewr by ors, sauls, or han engie.",
		Caption:   "A small vessel, propelled on water by oars, sails, or an engine, floats gracefully on a serene lake. the sun casts a warm glow on the water, reflecting the vibrant colors of the sky as birds fly overhead.",
	},
}
