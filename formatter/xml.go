package formatter

import (
	"strconv"
	"strings"

	"github.com/theoremus-urban-solutions/fleetreplay/siri"
)

// BuildXML serializes a SIRI response to XML
func (rb *responseBuilder) BuildXML(res *siri.SiriResponse) []byte {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>")
	b.WriteString("<Siri xmlns=\"http://www.siri.org.uk/siri\" version=\"2.0\">")
	sd := res.Siri.ServiceDelivery
	b.WriteString("<ServiceDelivery>")
	writeText(&b, "ResponseTimestamp", sd.ResponseTimestamp)
	writeText(&b, "ProducerRef", sd.ProducerRef)
	for _, vm := range sd.VehicleMonitoringDelivery {
		writeVehicleMonitoringXML(&b, vm)
	}
	b.WriteString("</ServiceDelivery>")
	b.WriteString("</Siri>")
	return []byte(b.String())
}

func writeVehicleMonitoringXML(b *strings.Builder, vm siri.VehicleMonitoring) {
	b.WriteString("<VehicleMonitoringDelivery version=\"2.0\">")
	writeText(b, "ResponseTimestamp", vm.ResponseTimestamp)
	writeText(b, "ValidUntil", vm.ValidUntil)
	for _, va := range vm.VehicleActivity {
		b.WriteString("<VehicleActivity>")
		writeText(b, "RecordedAtTime", va.RecordedAtTime)
		writeText(b, "ValidUntilTime", va.ValidUntilTime)
		writeMVJXML(b, va.MonitoredVehicleJourney)
		b.WriteString("</VehicleActivity>")
	}
	b.WriteString("</VehicleMonitoringDelivery>")
}

func writeMVJXML(b *strings.Builder, mvj siri.MonitoredVehicleJourney) {
	b.WriteString("<MonitoredVehicleJourney>")
	writeText(b, "LineRef", mvj.LineRef)
	if fr := mvj.FramedVehicleJourneyRef; fr != nil {
		b.WriteString("<FramedVehicleJourneyRef>")
		writeText(b, "DataFrameRef", fr.DataFrameRef)
		writeText(b, "DatedVehicleJourneyRef", fr.DatedVehicleJourneyRef)
		b.WriteString("</FramedVehicleJourneyRef>")
	}
	writeText(b, "VehicleMode", mvj.VehicleMode)
	writeText(b, "PublishedLineName", mvj.PublishedLineName)
	writeText(b, "OperatorRef", mvj.OperatorRef)
	b.WriteString("<Monitored>")
	b.WriteString(strconv.FormatBool(mvj.Monitored))
	b.WriteString("</Monitored>")
	// DataSource (SIRI-VM: required)
	writeText(b, "DataSource", mvj.DataSource)
	loc := mvj.VehicleLocation
	if loc.Latitude != nil || loc.Longitude != nil {
		b.WriteString("<VehicleLocation>")
		if loc.Longitude != nil {
			b.WriteString("<Longitude>")
			b.WriteString(strconv.FormatFloat(*loc.Longitude, 'f', 6, 64))
			b.WriteString("</Longitude>")
		}
		if loc.Latitude != nil {
			b.WriteString("<Latitude>")
			b.WriteString(strconv.FormatFloat(*loc.Latitude, 'f', 6, 64))
			b.WriteString("</Latitude>")
		}
		b.WriteString("</VehicleLocation>")
	}
	if mvj.Bearing != nil {
		b.WriteString("<Bearing>")
		b.WriteString(strconv.FormatFloat(*mvj.Bearing, 'f', 2, 64))
		b.WriteString("</Bearing>")
	}
	if mvj.Velocity != nil {
		b.WriteString("<Velocity>")
		b.WriteString(strconv.Itoa(*mvj.Velocity))
		b.WriteString("</Velocity>")
	}
	writeText(b, "VehicleStatus", mvj.VehicleStatus)
	writeText(b, "ProgressStatus", mvj.ProgressStatus)
	writeText(b, "VehicleRef", mvj.VehicleRef)
	if ext := mvj.Extensions; ext != nil {
		b.WriteString("<Extensions>")
		writeText(b, "LicensePlate", ext.LicensePlate)
		writeText(b, "VehicleKind", ext.VehicleKind)
		if ext.Progress != nil {
			b.WriteString("<Progress>")
			b.WriteString(strconv.FormatFloat(*ext.Progress, 'f', 2, 64))
			b.WriteString("</Progress>")
		}
		writeText(b, "PlaybackTime", ext.PlaybackTime)
		b.WriteString("</Extensions>")
	}
	b.WriteString("</MonitoredVehicleJourney>")
}

// writeText writes <name>value</name>, skipping empty values
func writeText(b *strings.Builder, name, value string) {
	if value == "" {
		return
	}
	b.WriteString("<")
	b.WriteString(name)
	b.WriteString(">")
	b.WriteString(xmlEscape(value))
	b.WriteString("</")
	b.WriteString(name)
	b.WriteString(">")
}

func xmlEscape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(s)
}
