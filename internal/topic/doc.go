// Package topic holds the immutable mapping from MQTT topic to the
// time-series coordinates readings on that topic are written under.
//
// The registry is loaded once at startup, either from a YAML/JSON file in
// the shape
//
//	{
//	  "sensors/t1": {
//	    "measurement": "temp",
//	    "tag": "sensor",
//	    "sensor_name": "s1",
//	    "value_field": "valor"
//	  }
//	}
//
// or from the topic_configs table of the SQLite database. It is never
// modified afterwards, so lookups need no locking.
package topic
