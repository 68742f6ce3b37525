package generator

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"gigfinder/internal/entity"
)

var localCatalog = []entity.Job{
	{Title: "Cattle Station Hand", Company: "Barkly Downs Pastoral", Location: "Tennant Creek, NT",
		Description: "Help muster and water cattle for a morning round. Some fence checks along the bore runs.",
		PayRate:     30, PayType: entity.PayHourly},
	{Title: "Mindil Beach Market Stall Helper", Company: "Top End Satay Co.", Location: "Darwin, NT",
		Description: "Set up the stall before sunset and serve the evening rush. Pack down after close.",
		PayRate:     28, PayType: entity.PayHourly},
	{Title: "Tourism Assistant", Company: "Katherine Gorge Cruises", Location: "Katherine, NT",
		Description: "Greet guests at the jetty and hand out safety briefings. Keep the kiosk stocked.",
		PayRate:     32, PayType: entity.PayHourly},
	{Title: "Rock Art Tour Driver", Company: "Kakadu Walkabout Tours", Location: "Jabiru, NT",
		Description: "Drive a small group between Ubirr and the Border Store. Troopy licence required.",
		PayRate:     180, PayType: entity.PayFlat},
	{Title: "Community Art Centre Packer", Company: "Yirrkala Arts Collective", Location: "Nhulunbuy, NT",
		Description: "Wrap and crate finished works for freight. Careful handling of bark paintings.",
		PayRate:     120, PayType: entity.PayFlat},
	{Title: "Desert Festival Setup Crew", Company: "Red Centre Events", Location: "Alice Springs, NT",
		Description: "Raise shade structures and run cabling for the weekend stage. Early start to beat the heat.",
		PayRate:     35, PayType: entity.PayHourly},
	{Title: "Barramundi Boat Deckhand", Company: "Daly River Fishing Charters", Location: "Daly River, NT",
		Description: "Prep bait and rods, then clean the boat after the morning charter.",
		PayRate:     150, PayType: entity.PayFlat},
}

// Local serves gigs from a built-in catalog so the service runs without an API key.
type Local struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

func NewLocal(seed uint64) *Local {
	return &Local{
		rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
}

func (l *Local) GenerateJob(ctx context.Context) (entity.Job, error) {
	if err := ctx.Err(); err != nil {
		return entity.Job{}, err
	}
	l.mu.Lock()
	job := localCatalog[l.rnd.IntN(len(localCatalog))]
	l.mu.Unlock()

	job.ID = entity.NewJobID(l.now(), job.Title)
	return job, nil
}

func (l *Local) GenerateDemand(ctx context.Context) ([]entity.DemandPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]entity.DemandPoint, 0, len(entity.DemandLocations))
	for _, loc := range entity.DemandLocations {
		out = append(out, entity.DemandPoint{
			Location: loc,
			Demand:   float64(entity.MinDemand + l.rnd.IntN(entity.MaxDemand-entity.MinDemand+1)),
		})
	}
	return out, nil
}
