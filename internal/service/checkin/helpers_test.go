package checkin_test

import checkinmodel "github.com/zhouzirui/neuroguard/backend/internal/model/checkin"

func entry(sessionID, label string) checkinmodel.Entry {
	return checkinmodel.Entry{SessionID: sessionID, Label: label, Confidence: 0.5}
}
