// Package backend is the HTTP/JSON transport to the home-automation
// controller.
//
// The controller exposes one read endpoint and a set of control endpoints:
//
//	GET  /status                       current state as JSON
//	POST /alarm/on, /alarm/off         test alarm
//	POST /system/arm, /system/disarm   security system
//	POST /dms/key        {key}         one keypad character
//	POST /timer/set      {seconds}     kitchen timer value
//	POST /timer/config   {add_n}       seconds added per BTN press
//	POST /timer/add                    BTN press (add / stop blink)
//	POST /rgb            {on} | {r,g,b}
//	POST /scenario/pi1_entry, /scenario/pi1_exit
//
// # Usage Example
//
//	client := backend.NewClient("http://127.0.0.1:5001", 3*time.Second)
//
//	body, err := client.FetchStatus(ctx)
//	if err != nil {
//	    fmt.Println(backend.ShortMessage(err))
//	}
//
//	err = client.Send(ctx, backend.SetRGBPower(false))
//
// Each control request is described by a Command value built with the
// constructors in commands.go. Power toggles and colour changes for the RGB
// light use distinct body types, so one can never leak the other's fields.
//
// # Errors
//
// Every failure is an *Error carrying an ErrorType (network, timeout,
// connection refused, DNS, HTTP status, parse, canceled). ShortMessage
// renders one line for the dashboard banner.
package backend
