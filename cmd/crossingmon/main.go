package main

import (
	"flag"
	"log"
	"os"

	fx "github.com/robotalks/crossing/pkg/framework"
	"github.com/robotalks/crossing/pkg/status"
	"github.com/robotalks/crossing/pkg/status/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/crossing/"
)

func init() {
	if val := os.Getenv("CROSSING_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	q.Sub(mqtt.MetaTopicPattern, mqtt.Handler(func(topic string, payload []byte) {
		if len(payload) == 0 {
			log.Printf("%s: offline", topic)
			return
		}
		log.Printf("%s: %s", topic, string(payload))
	}))
	q.Sub(mqtt.StatusTopicPattern, mqtt.Handler(func(topic string, payload []byte) {
		msg, err := status.DecodeCrossingStatus(payload)
		if err != nil {
			log.Printf("%s: bad status: %v", topic, err)
			return
		}
		log.Printf("%s: %s | tick %d | light %s | poll %s",
			msg.ID, msg.Line(), msg.Tick, msg.Light, msg.LastPoll)
	}))

	runner := fx.NewRunner().HandleSignals()
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-runner.Context.Done()
	q.Close()
}
