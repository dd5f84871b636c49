package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/brightline/frontdesk/internal/provider"
)

// Simulated backend latency per tool.
const (
	scheduleDelay     = 2 * time.Second
	availabilityDelay = 2 * time.Second
	messageDelay      = 1500 * time.Millisecond
	companyInfoDelay  = 3 * time.Second
	findPersonDelay   = 2 * time.Second
)

var companyInfo = map[string]string{
	"hours":    "Our office hours are Monday through Friday, 9:00 AM to 5:00 PM Eastern Time.",
	"location": "Our main office is located in the downtown business district. For specific address details, please visit our website.",
	"website":  "You can find more information on our website at techsolutions.com",
	"contact":  "You can reach our general office line at 555-TECH-SOL or email us at info@techsolutions.com.",
}

const companyInfoDefault = "I don't have specific information about that topic. For more details, I'd recommend checking our website at techsolutions.com or contacting our main office."

// RegisterOfficeTools adds the office assistant tools to a dispatcher. All
// tools write to the given ledger; find_person consults the directory.
func RegisterOfficeTools(d *Dispatcher, ledger *Ledger, dir Directory, logger *zap.Logger) {
	d.Register(provider.Tool{
		Type: "function",
		Function: provider.ToolFunction{
			Name:        "schedule_meeting",
			Description: "Schedule a meeting in the calendar",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name":         map[string]string{"type": "string", "description": "The name of the person scheduling the meeting"},
					"date":         map[string]string{"type": "string", "description": "The date of the meeting in YYYY-MM-DD format"},
					"time":         map[string]string{"type": "string", "description": "The time of the meeting in HH:MM format"},
					"topic":        map[string]string{"type": "string", "description": "Optional topic for the meeting"},
					"participants": map[string]interface{}{"type": "array", "items": map[string]string{"type": "string"}, "description": "Optional list of participant names"},
				},
				"required": []string{"name", "date", "time"},
			},
		},
	}, func(ctx context.Context, args string) (string, error) {
		var p struct {
			Name         string   `json:"name"`
			Date         string   `json:"date"`
			Time         string   `json:"time"`
			Topic        string   `json:"topic"`
			Participants []string `json:"participants"`
		}
		if err := unmarshalArgs(args, &p); err != nil {
			return "", err
		}
		logger.Info("scheduling meeting",
			zap.String("name", p.Name),
			zap.String("date", p.Date),
			zap.String("time", p.Time))

		topic := p.Topic
		if topic == "" {
			topic = "Unspecified"
		}
		m := ledger.AddMeeting(Meeting{
			Organizer:    p.Name,
			Date:         p.Date,
			Time:         p.Time,
			Topic:        topic,
			Participants: p.Participants,
		})
		if err := d.wait(ctx, scheduleDelay); err != nil {
			return "", err
		}
		return fmt.Sprintf(
			"Meeting scheduled successfully. Meeting ID: %d, Date: %s, Time: %s, Topic: %s",
			m.ID, m.Date, m.Time, m.Topic), nil
	})

	d.Register(provider.Tool{
		Type: "function",
		Function: provider.ToolFunction{
			Name:        "check_availability",
			Description: "Check availability for a specific date and time range",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"date":       map[string]string{"type": "string", "description": "The date to check in YYYY-MM-DD format"},
					"time_range": map[string]string{"type": "string", "description": "The time range to check (e.g., \"10:00-11:00\")"},
				},
				"required": []string{"date", "time_range"},
			},
		},
	}, func(ctx context.Context, args string) (string, error) {
		var p struct {
			Date      string `json:"date"`
			TimeRange string `json:"time_range"`
		}
		if err := unmarshalArgs(args, &p); err != nil {
			return "", err
		}
		logger.Info("checking availability",
			zap.String("date", p.Date),
			zap.String("time_range", p.TimeRange))

		if err := d.wait(ctx, availabilityDelay); err != nil {
			return "", err
		}
		if ledger.IsBooked(p.Date, p.TimeRange) {
			return fmt.Sprintf("Sorry, the requested time slot (%s, %s) is already booked.", p.Date, p.TimeRange), nil
		}
		return fmt.Sprintf("The requested time slot (%s, %s) is available.", p.Date, p.TimeRange), nil
	})

	d.Register(provider.Tool{
		Type: "function",
		Function: provider.ToolFunction{
			Name:        "take_message",
			Description: "Take a message for someone in the office",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"from_name": map[string]string{"type": "string", "description": "The name of the person leaving the message"},
					"to_name":   map[string]string{"type": "string", "description": "The name of the person the message is for"},
					"message":   map[string]string{"type": "string", "description": "The content of the message"},
					"urgency":   map[string]string{"type": "string", "description": "The urgency level (low, normal, high)"},
				},
				"required": []string{"from_name", "to_name", "message"},
			},
		},
	}, func(ctx context.Context, args string) (string, error) {
		var p struct {
			FromName string `json:"from_name"`
			ToName   string `json:"to_name"`
			Message  string `json:"message"`
			Urgency  string `json:"urgency"`
		}
		if err := unmarshalArgs(args, &p); err != nil {
			return "", err
		}
		logger.Info("taking message",
			zap.String("from", p.FromName),
			zap.String("to", p.ToName))

		if p.Urgency == "" {
			p.Urgency = "normal"
		}
		ledger.AddNote(p.ToName, Note{
			From:      p.FromName,
			Message:   p.Message,
			Urgency:   p.Urgency,
			Timestamp: time.Now().Format("2006-01-02 15:04:05"),
		})
		if err := d.wait(ctx, messageDelay); err != nil {
			return "", err
		}
		return fmt.Sprintf(
			"Message from %s to %s saved successfully. Urgency: %s. I'll make sure %s receives your message.",
			p.FromName, p.ToName, p.Urgency, p.ToName), nil
	})

	d.Register(provider.Tool{
		Type: "function",
		Function: provider.ToolFunction{
			Name:        "provide_company_info",
			Description: "Provide general information about the company based on the requested topic",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"topic": map[string]string{"type": "string", "description": "The topic to provide information about (e.g., \"hours\", \"location\", \"website\")"},
				},
				"required": []string{"topic"},
			},
		},
	}, func(ctx context.Context, args string) (string, error) {
		var p struct {
			Topic string `json:"topic"`
		}
		if err := unmarshalArgs(args, &p); err != nil {
			return "", err
		}
		logger.Info("providing company info", zap.String("topic", p.Topic))

		if err := d.wait(ctx, companyInfoDelay); err != nil {
			return "", err
		}
		if info, ok := companyInfo[strings.ToLower(p.Topic)]; ok {
			return info, nil
		}
		return companyInfoDefault, nil
	})

	d.Register(provider.Tool{
		Type: "function",
		Function: provider.ToolFunction{
			Name:        "find_person",
			Description: "Check if a person is available in the office",
			Parameters: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"name": map[string]string{"type": "string", "description": "The name of the person to find"},
				},
				"required": []string{"name"},
			},
		},
	}, func(ctx context.Context, args string) (string, error) {
		var p struct {
			Name string `json:"name"`
		}
		if err := unmarshalArgs(args, &p); err != nil {
			return "", err
		}
		logger.Info("checking person availability", zap.String("name", p.Name))

		if err := d.wait(ctx, findPersonDelay); err != nil {
			return "", err
		}
		return dir.Lookup(p.Name), nil
	})
}
