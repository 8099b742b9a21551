package domain

// timelineStages is the customer-facing progression. Cancelled is terminal
// and sits outside it.
var timelineStages = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaymentUploaded,
	OrderStatusPaymentConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
}

type TimelineStage struct {
	Status  OrderStatus `json:"status"`
	Label   string      `json:"label"`
	Current bool        `json:"current"`
}

type Timeline struct {
	Stages    []TimelineStage `json:"stages"`
	Cancelled bool            `json:"cancelled"`
}

func NewTimeline(current OrderStatus) Timeline {
	t := Timeline{
		Stages:    make([]TimelineStage, 0, len(timelineStages)),
		Cancelled: current == OrderStatusCancelled,
	}
	for _, st := range timelineStages {
		t.Stages = append(t.Stages, TimelineStage{
			Status:  st,
			Label:   st.Label(),
			Current: st == current,
		})
	}
	return t
}

// CurrentIndex returns the highlighted stage, or -1 when none is.
func (t Timeline) CurrentIndex() int {
	for i, s := range t.Stages {
		if s.Current {
			return i
		}
	}
	return -1
}
